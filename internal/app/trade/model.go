/*
Package trade contains the trade-request workflow documents and their MongoDB store.

A trade request moves pending → accepted|declined, and an accepted request can
be marked completed by either side. Completed trades can be rated once per
participant; ratings feed the rated user's running average.
*/
package trade

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trade request states.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusDeclined  = "declined"
	StatusCompleted = "completed"
)

// Request is the trade-request document. Owner is the item's owner; Recipient
// is the user asking for the item.
type Request struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Item        primitive.ObjectID `bson:"item" json:"item"`
	Owner       primitive.ObjectID `bson:"owner" json:"owner"`
	Recipient   primitive.ObjectID `bson:"recipient" json:"recipient"`
	Status      string             `bson:"status" json:"status"`
	Message     string             `bson:"message,omitempty" json:"message,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// Rating is one participant's review of a completed trade.
type Rating struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Trade     primitive.ObjectID `bson:"trade" json:"trade"`
	Rater     primitive.ObjectID `bson:"rater" json:"rater"`
	Rated     primitive.ObjectID `bson:"rated" json:"rated"`
	Rating    int                `bson:"rating" json:"rating"`
	Review    string             `bson:"review,omitempty" json:"review,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
