/*
Package user contains the account document model and its MongoDB store.

Accounts carry both credential material (bcrypt password hash, reset codes)
and the public trading profile (avatar, location, rating, trade count).
*/
package user

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultAvatar is assigned to accounts created without a profile picture.
const DefaultAvatar = "https://images.pexels.com/photos/771742/pexels-photo-771742.jpeg?auto=compress&cs=tinysrgb&w=150&h=150&dpr=1"

// User is the account document persisted in the users collection.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         string             `bson:"role" json:"role"`
	Avatar       string             `bson:"avatar" json:"avatar"`
	Location     string             `bson:"location,omitempty" json:"location,omitempty"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Bio          string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Rating       float64            `bson:"rating" json:"rating"`
	RatingCount  int                `bson:"ratingCount" json:"-"`
	TotalTrades  int                `bson:"totalTrades" json:"totalTrades"`
	IsVerified   bool               `bson:"isVerified" json:"isVerified"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	LastLogin    *time.Time         `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`

	ResetCode       string     `bson:"resetCode,omitempty" json:"-"`
	ResetCodeExpiry *time.Time `bson:"resetCodeExpiry,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PublicProfile is the reduced view of an account returned to other users.
type PublicProfile struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Avatar      string             `bson:"avatar" json:"avatar"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Bio         string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Rating      float64            `bson:"rating" json:"rating"`
	TotalTrades int                `bson:"totalTrades" json:"totalTrades"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
}

// Summary is the sender enrichment attached to chat messages.
type Summary struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Name   string             `bson:"name" json:"name"`
	Avatar string             `bson:"avatar" json:"avatar"`
}
