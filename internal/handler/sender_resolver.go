package handler

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecotrade/internal/app/chat"
	"ecotrade/internal/app/gateway"
)

// userSenderResolver adapts the user store to the gateway's sender lookup.
type userSenderResolver struct {
	users UserStore
}

// NewSenderResolver returns the gateway's source of sender display data.
func NewSenderResolver(users UserStore) gateway.SenderResolver {
	return &userSenderResolver{users: users}
}

func (sr *userSenderResolver) SenderInfo(ctx context.Context, userID string) (chat.SenderInfo, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return chat.SenderInfo{}, err
	}
	summaries, err := sr.users.Summaries(ctx, []primitive.ObjectID{oid})
	if err != nil {
		return chat.SenderInfo{}, err
	}
	s, ok := summaries[userID]
	if !ok {
		return chat.SenderInfo{}, errors.New("sender not found")
	}
	return chat.SenderInfo{ID: userID, Name: s.Name, Avatar: s.Avatar}, nil
}
