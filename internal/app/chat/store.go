package chat

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ecotrade/internal/app/db"
)

// Store provides the persistence operations for conversations and messages.
// It satisfies the gateway's ChatStore interface.
type Store struct {
	chats    *mongo.Collection
	messages *mongo.Collection
}

// NewStore returns a Store bound to the chat collections.
func NewStore(mdb *mongo.Database) *Store {
	return &Store{
		chats:    mdb.Collection(db.CollChats),
		messages: mdb.Collection(db.CollMessages),
	}
}

// CreateOrGet returns the conversation between the two users, creating it on
// first contact.
func (s *Store) CreateOrGet(ctx context.Context, a, b primitive.ObjectID) (*Chat, error) {
	var c Chat
	err := s.chats.FindOne(ctx, bson.M{
		"participants": bson.M{"$all": []primitive.ObjectID{a, b}},
	}).Decode(&c)
	if err == nil {
		return &c, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	now := time.Now()
	c = Chat{
		ID:           primitive.NewObjectID(),
		Participants: []primitive.ObjectID{a, b},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.chats.InsertOne(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindChatByID fetches a conversation by its hex id. A malformed id is treated
// the same as an unknown one: (nil, mongo.ErrNoDocuments).
func (s *Store) FindChatByID(ctx context.Context, chatID string) (*Chat, error) {
	oid, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var c Chat
	if err := s.chats.FindOne(ctx, bson.M{"_id": oid}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListParticipants returns the hex ids of everyone in the conversation.
func (s *Store) ListParticipants(ctx context.Context, chatID string) ([]string, error) {
	c, err := s.FindChatByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		out = append(out, p.Hex())
	}
	return out, nil
}

// SaveMessage persists a message and, as part of the same operation's
// contract, moves the conversation's last-message pointer and updatedAt.
// The message is recorded as already read by its sender.
func (s *Store) SaveMessage(ctx context.Context, chatID string, senderID string, content string, at time.Time) (*Message, error) {
	chatOID, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	senderOID, err := primitive.ObjectIDFromHex(senderID)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	msg := Message{
		ID:      primitive.NewObjectID(),
		Chat:    chatOID,
		Sender:  senderOID,
		Content: content,
		ReadBy: []ReadReceipt{
			{User: senderOID, ReadAt: at},
		},
		CreatedAt: at,
	}

	if _, err := s.messages.InsertOne(ctx, msg); err != nil {
		return nil, err
	}

	if _, err := s.chats.UpdateByID(ctx, chatOID, bson.M{"$set": bson.M{
		"lastMessage": msg.ID,
		"updatedAt":   at,
	}}); err != nil {
		return nil, err
	}

	return &msg, nil
}

// ListChats returns the user's active conversations, most recently updated
// first, each with its unread count and last message.
func (s *Store) ListChats(ctx context.Context, userID primitive.ObjectID) ([]Summary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cur, err := s.chats.Find(ctx, bson.M{
		"participants": userID,
		"isActive":     true,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var chats []Chat
	if err := cur.All(ctx, &chats); err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(chats))
	for _, c := range chats {
		sum := Summary{Chat: c}

		for _, p := range c.Participants {
			if p != userID {
				sum.OtherParticipant = p.Hex()
				break
			}
		}

		unread, err := s.countUnread(ctx, c.ID, userID)
		if err != nil {
			return nil, err
		}
		sum.UnreadCount = unread

		if c.LastMessage != nil {
			var last Message
			if err := s.messages.FindOne(ctx, bson.M{"_id": *c.LastMessage}).Decode(&last); err == nil {
				sum.LastMessage = &last
			}
		}

		summaries = append(summaries, sum)
	}

	return summaries, nil
}

func (s *Store) countUnread(ctx context.Context, chatID, userID primitive.ObjectID) (int64, error) {
	return s.messages.CountDocuments(ctx, bson.M{
		"chat":        chatID,
		"sender":      bson.M{"$ne": userID},
		"readBy.user": bson.M{"$ne": userID},
	})
}

// ListMessages returns one page of a conversation's history, oldest first
// within the page, plus the total message count.
func (s *Store) ListMessages(ctx context.Context, chatID primitive.ObjectID, page, limit int) ([]Message, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	total, err := s.messages.CountDocuments(ctx, bson.M{"chat": chatID})
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := s.messages.Find(ctx, bson.M{"chat": chatID}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var msgs []Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, 0, err
	}

	// Stored newest-first for the skip/limit; clients render oldest-first.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	return msgs, total, nil
}

// MarkRead appends a read receipt for the user to every message in the
// conversation they have not seen yet.
func (s *Store) MarkRead(ctx context.Context, chatID, userID primitive.ObjectID) error {
	_, err := s.messages.UpdateMany(ctx,
		bson.M{
			"chat":        chatID,
			"sender":      bson.M{"$ne": userID},
			"readBy.user": bson.M{"$ne": userID},
		},
		bson.M{"$push": bson.M{"readBy": ReadReceipt{User: userID, ReadAt: time.Now()}}},
	)
	return err
}
