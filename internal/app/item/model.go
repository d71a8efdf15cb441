/*
Package item contains the listing document model and its MongoDB store.
*/
package item

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Listing categories.
var Categories = []string{"Electronics", "Plastic", "Metal", "Paper", "Glass", "Textile", "Other"}

// Listing conditions.
var Conditions = []string{"excellent", "good", "fair", "poor"}

// Listing lifecycle states. Removed listings stay in the collection but are
// hidden from every query.
const (
	StatusAvailable = "available"
	StatusPending   = "pending"
	StatusTraded    = "traded"
	StatusRemoved   = "removed"
)

// Location describes where an item can be picked up.
type Location struct {
	Address     string    `bson:"address" json:"address"`
	City        string    `bson:"city,omitempty" json:"city,omitempty"`
	Coordinates []float64 `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
}

// Item is the listing document persisted in the items collection.
type Item struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User        primitive.ObjectID `bson:"user" json:"user"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Condition   string             `bson:"condition" json:"condition"`
	Images      []string           `bson:"images" json:"images"`
	Location    Location           `bson:"location" json:"location"`
	Status      string             `bson:"status" json:"status"`
	Views       int                `bson:"views" json:"views"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ValidCategory reports whether c is one of the known listing categories.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// ValidCondition reports whether c is one of the known listing conditions.
func ValidCondition(c string) bool {
	for _, v := range Conditions {
		if v == c {
			return true
		}
	}
	return false
}
