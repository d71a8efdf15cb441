// Package db owns the MongoDB connection and the index bootstrap executed at startup.
package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared by the stores.
const (
	CollUsers         = "users"
	CollItems         = "items"
	CollChats         = "chats"
	CollMessages      = "messages"
	CollTradeRequests = "trade_requests"
	CollTradeRatings  = "trade_ratings"
)

const (
	connectTimeout = 15 * time.Second
	maxPoolSize    = 100
)

// Connect establishes the MongoDB client, verifies connectivity with a ping,
// and ensures the indexes the stores rely on. It returns the database handle.
func Connect(ctx context.Context, uri, database string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(maxPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	mdb := client.Database(database)

	if err := ensureIndexes(ctx, mdb); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return mdb, nil
}

// Disconnect closes the underlying MongoDB client.
func Disconnect(ctx context.Context, mdb *mongo.Database) error {
	return mdb.Client().Disconnect(ctx)
}

// ensureIndexes creates the indexes used by the query paths. CreateMany is
// idempotent for identical definitions, so this is safe to run on every boot.
func ensureIndexes(ctx context.Context, mdb *mongo.Database) error {
	userIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	if _, err := mdb.Collection(CollUsers).Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	itemIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}}},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "category", Value: 1}}},
	}
	if _, err := mdb.Collection(CollItems).Indexes().CreateMany(ctx, itemIndexes); err != nil {
		return fmt.Errorf("failed to create item indexes: %w", err)
	}

	chatIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "participants", Value: 1}}},
		{Keys: bson.D{{Key: "updatedAt", Value: -1}}},
	}
	if _, err := mdb.Collection(CollChats).Indexes().CreateMany(ctx, chatIndexes); err != nil {
		return fmt.Errorf("failed to create chat indexes: %w", err)
	}

	messageIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "chat", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "sender", Value: 1}}},
	}
	if _, err := mdb.Collection(CollMessages).Indexes().CreateMany(ctx, messageIndexes); err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}

	ratingIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trade", Value: 1}, {Key: "rater", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "rated", Value: 1}}},
	}
	if _, err := mdb.Collection(CollTradeRatings).Indexes().CreateMany(ctx, ratingIndexes); err != nil {
		return fmt.Errorf("failed to create trade rating indexes: %w", err)
	}

	return nil
}
