package user

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ecotrade/internal/app/db"
)

// Store provides the persistence operations for account documents.
type Store struct {
	coll *mongo.Collection
}

// NewStore returns a Store bound to the users collection.
func NewStore(mdb *mongo.Database) *Store {
	return &Store{coll: mdb.Collection(db.CollUsers)}
}

// Create inserts a new account and returns it with its assigned id.
func (s *Store) Create(ctx context.Context, u *User) (*User, error) {
	now := time.Now()
	u.ID = primitive.NewObjectID()
	u.Role = RoleUser
	if u.Avatar == "" {
		u.Avatar = DefaultAvatar
	}
	u.IsActive = true
	u.CreatedAt = now
	u.UpdatedAt = now
	u.LastLogin = &now

	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetByEmail fetches an account by its (unique) email address.
func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID fetches an account by id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	var u User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetPublicProfile fetches the reduced public view of an account.
func (s *Store) GetPublicProfile(ctx context.Context, id primitive.ObjectID) (*PublicProfile, error) {
	var p PublicProfile
	opts := options.FindOne().SetProjection(bson.M{
		"name": 1, "avatar": 1, "location": 1, "bio": 1,
		"rating": 1, "totalTrades": 1, "isActive": 1,
	})
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Summaries fetches the message-sender enrichment for a set of user ids.
// The result is keyed by hex id; ids that do not resolve are absent.
func (s *Store) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[string]Summary, error) {
	out := make(map[string]Summary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	opts := options.Find().SetProjection(bson.M{"name": 1, "avatar": 1})
	cur, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var sum Summary
		if err := cur.Decode(&sum); err != nil {
			return nil, err
		}
		out[sum.ID.Hex()] = sum
	}
	return out, cur.Err()
}

// ProfileUpdate carries the mutable profile fields. Nil pointers are left untouched.
type ProfileUpdate struct {
	Name     *string
	Avatar   *string
	Location *string
	Phone    *string
	Bio      *string
}

// UpdateProfile applies a partial profile update and returns the fresh document.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*User, error) {
	set := bson.M{"updatedAt": time.Now()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Avatar != nil {
		set["avatar"] = *upd.Avatar
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}

	var u User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// TouchLastLogin records a successful sign-in.
func (s *Store) TouchLastLogin(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"lastLogin": time.Now()}})
	return err
}

// SetResetCode stores a password reset code with its expiry.
func (s *Store) SetResetCode(ctx context.Context, id primitive.ObjectID, code string, expiry time.Time) error {
	_, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"resetCode":       code,
		"resetCodeExpiry": expiry,
	}})
	return err
}

// ResetPassword swaps the password hash and clears any pending reset code.
func (s *Store) ResetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	_, err := s.coll.UpdateByID(ctx, id, bson.M{
		"$set":   bson.M{"passwordHash": passwordHash, "updatedAt": time.Now()},
		"$unset": bson.M{"resetCode": "", "resetCodeExpiry": ""},
	})
	return err
}

// SetActive toggles the account's active flag (admin moderation).
func (s *Store) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	res, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"isActive":  active,
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

// ApplyRating folds one new trade rating into the running average.
func (s *Store) ApplyRating(ctx context.Context, id primitive.ObjectID, rating int) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	count := u.RatingCount + 1
	avg := (u.Rating*float64(u.RatingCount) + float64(rating)) / float64(count)

	_, err = s.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"rating":      avg,
		"ratingCount": count,
		"updatedAt":   time.Now(),
	}})
	return err
}

// IncTotalTrades bumps the completed-trade counter.
func (s *Store) IncTotalTrades(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.coll.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"totalTrades": 1}})
	return err
}
