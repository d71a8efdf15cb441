package item

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ecotrade/internal/app/db"
)

// Store provides the persistence operations for listing documents.
type Store struct {
	coll *mongo.Collection
}

// NewStore returns a Store bound to the items collection.
func NewStore(mdb *mongo.Database) *Store {
	return &Store{coll: mdb.Collection(db.CollItems)}
}

// ListFilter narrows a marketplace listing query. Zero values are ignored.
type ListFilter struct {
	Category  string
	Condition string
	Status    string
	Search    string
	Page      int
	Limit     int
}

// List returns one page of listings plus the total match count.
// Removed listings are always excluded.
func (s *Store) List(ctx context.Context, f ListFilter) ([]Item, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 50 {
		f.Limit = 12
	}

	filter := bson.M{"status": bson.M{"$ne": StatusRemoved}}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Condition != "" {
		filter["condition"] = f.Condition
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Search != "" {
		filter["$text"] = bson.M{"$search": f.Search}
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	items := make([]Item, 0, f.Limit)
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// Get fetches a visible listing and increments its view counter.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (*Item, error) {
	var it Item
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": bson.M{"$ne": StatusRemoved}},
		bson.M{"$inc": bson.M{"views": 1}},
		opts,
	).Decode(&it)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create inserts a new listing owned by the given user.
func (s *Store) Create(ctx context.Context, it *Item) (*Item, error) {
	now := time.Now()
	it.ID = primitive.NewObjectID()
	it.Status = StatusAvailable
	it.Views = 0
	if it.Images == nil {
		it.Images = []string{}
	}
	it.CreatedAt = now
	it.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// Update applies an edit to a listing, but only for its owner.
func (s *Store) Update(ctx context.Context, id, owner primitive.ObjectID, set bson.M) (*Item, error) {
	set["updatedAt"] = time.Now()

	var it Item
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "user": owner, "status": bson.M{"$ne": StatusRemoved}},
		bson.M{"$set": set},
		opts,
	).Decode(&it)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// SoftDelete hides a listing from every query without dropping the document.
func (s *Store) SoftDelete(ctx context.Context, id, owner primitive.ObjectID) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "user": owner},
		bson.M{"$set": bson.M{"status": StatusRemoved, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetStatus moves a listing through its trade lifecycle.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListByUser returns every visible listing owned by the given user.
func (s *Store) ListByUser(ctx context.Context, owner primitive.ObjectID) ([]Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.M{
		"user":   owner,
		"status": bson.M{"$ne": StatusRemoved},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []Item
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
