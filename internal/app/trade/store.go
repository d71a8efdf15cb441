package trade

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ecotrade/internal/app/db"
)

// Store provides the persistence operations for trade requests and ratings.
type Store struct {
	requests *mongo.Collection
	ratings  *mongo.Collection
}

// NewStore returns a Store bound to the trade collections.
func NewStore(mdb *mongo.Database) *Store {
	return &Store{
		requests: mdb.Collection(db.CollTradeRequests),
		ratings:  mdb.Collection(db.CollTradeRatings),
	}
}

// CreateRequest inserts a new pending trade request.
func (s *Store) CreateRequest(ctx context.Context, r *Request) (*Request, error) {
	r.ID = primitive.NewObjectID()
	r.Status = StatusPending
	r.CreatedAt = time.Now()

	if _, err := s.requests.InsertOne(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// HasOpenRequest reports whether the user already has a pending or accepted
// request on the item, preventing duplicates.
func (s *Store) HasOpenRequest(ctx context.Context, item, recipient primitive.ObjectID) (bool, error) {
	count, err := s.requests.CountDocuments(ctx, bson.M{
		"item":      item,
		"recipient": recipient,
		"status":    bson.M{"$in": []string{StatusPending, StatusAccepted}},
	})
	return count > 0, err
}

// GetRequest fetches a trade request by id.
func (s *Store) GetRequest(ctx context.Context, id primitive.ObjectID) (*Request, error) {
	var r Request
	if err := s.requests.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// SetRequestStatus records an accept/decline decision on a pending request.
func (s *Store) SetRequestStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.requests.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusPending},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// CompleteRequest marks an accepted request as completed with a timestamp.
func (s *Store) CompleteRequest(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	res, err := s.requests.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusAccepted},
		bson.M{"$set": bson.M{"status": StatusCompleted, "completedAt": now}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListForUser returns the trade requests where the user is either side,
// newest first.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]Request, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.requests.Find(ctx, bson.M{
		"$or": []bson.M{{"owner": userID}, {"recipient": userID}},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var list []Request
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateRating inserts a rating; the unique (trade, rater) index rejects duplicates.
func (s *Store) CreateRating(ctx context.Context, r *Rating) (*Rating, error) {
	r.ID = primitive.NewObjectID()
	r.CreatedAt = time.Now()

	if _, err := s.ratings.InsertOne(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ListRatingsFor returns the reviews received by a user, newest first.
func (s *Store) ListRatingsFor(ctx context.Context, rated primitive.ObjectID) ([]Rating, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.ratings.Find(ctx, bson.M{"rated": rated}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var list []Rating
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}
