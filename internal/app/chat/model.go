/*
Package chat contains the durable conversation documents and their MongoDB store.

The store is also the authorization source for the realtime gateway: a user may
read or write a conversation only while listed in its participants array.
*/
package chat

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxContentLength is the maximum number of characters in a message body.
const MaxContentLength = 1000

// Chat is a two-party conversation document.
type Chat struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
	LastMessage  *primitive.ObjectID  `bson:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	IsActive     bool                 `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasParticipant reports whether the user id is part of the conversation.
func (c *Chat) HasParticipant(userID primitive.ObjectID) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// ReadReceipt records that one participant has seen a message.
type ReadReceipt struct {
	User   primitive.ObjectID `bson:"user" json:"user"`
	ReadAt time.Time          `bson:"readAt" json:"readAt"`
}

// Message is one persisted chat message.
type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Chat      primitive.ObjectID `bson:"chat" json:"chat"`
	Sender    primitive.ObjectID `bson:"sender" json:"sender"`
	Content   string             `bson:"content" json:"content"`
	ReadBy    []ReadReceipt      `bson:"readBy" json:"readBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// SenderInfo is the display enrichment attached to a message on the wire.
type SenderInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// WireMessage is the message shape broadcast to clients and returned by the
// REST message endpoints: the persisted fields plus the sender's display data.
type WireMessage struct {
	Message
	SenderInfo SenderInfo `json:"senderInfo"`
}

// Summary is one row of a user's conversation list.
type Summary struct {
	Chat        Chat     `json:"chat"`
	LastMessage *Message `json:"lastMessage,omitempty"`
	UnreadCount int64    `json:"unreadCount"`
	// OtherParticipant is the hex id of the peer in this two-party chat.
	OtherParticipant string `json:"otherParticipant"`
}
