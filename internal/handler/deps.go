package handler

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecotrade/internal/app/chat"
	"ecotrade/internal/app/gateway"
	"ecotrade/internal/app/item"
	"ecotrade/internal/app/storage"
	"ecotrade/internal/app/trade"
	"ecotrade/internal/app/user"
	"ecotrade/internal/configs"
	"ecotrade/internal/pkg/mail"
)

// UserStore is the account persistence surface the handlers depend on.
type UserStore interface {
	Create(ctx context.Context, u *user.User) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*user.User, error)
	GetPublicProfile(ctx context.Context, id primitive.ObjectID) (*user.PublicProfile, error)
	Summaries(ctx context.Context, ids []primitive.ObjectID) (map[string]user.Summary, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, upd user.ProfileUpdate) (*user.User, error)
	TouchLastLogin(ctx context.Context, id primitive.ObjectID) error
	SetResetCode(ctx context.Context, id primitive.ObjectID, code string, expiry time.Time) error
	ResetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
	ApplyRating(ctx context.Context, id primitive.ObjectID, rating int) error
	IncTotalTrades(ctx context.Context, id primitive.ObjectID) error
}

// ItemStore is the listing persistence surface the handlers depend on.
type ItemStore interface {
	List(ctx context.Context, f item.ListFilter) ([]item.Item, int64, error)
	Get(ctx context.Context, id primitive.ObjectID) (*item.Item, error)
	Create(ctx context.Context, it *item.Item) (*item.Item, error)
	Update(ctx context.Context, id, owner primitive.ObjectID, set bson.M) (*item.Item, error)
	SoftDelete(ctx context.Context, id, owner primitive.ObjectID) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) error
	ListByUser(ctx context.Context, owner primitive.ObjectID) ([]item.Item, error)
}

// TradeStore is the trade-workflow persistence surface the handlers depend on.
type TradeStore interface {
	CreateRequest(ctx context.Context, r *trade.Request) (*trade.Request, error)
	HasOpenRequest(ctx context.Context, item, recipient primitive.ObjectID) (bool, error)
	GetRequest(ctx context.Context, id primitive.ObjectID) (*trade.Request, error)
	SetRequestStatus(ctx context.Context, id primitive.ObjectID, status string) error
	CompleteRequest(ctx context.Context, id primitive.ObjectID) error
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]trade.Request, error)
	CreateRating(ctx context.Context, r *trade.Rating) (*trade.Rating, error)
	ListRatingsFor(ctx context.Context, rated primitive.ObjectID) ([]trade.Rating, error)
}

// ChatStore is the conversation persistence surface the handlers depend on.
// It is a superset of the gateway's view of the same store.
type ChatStore interface {
	CreateOrGet(ctx context.Context, a, b primitive.ObjectID) (*chat.Chat, error)
	FindChatByID(ctx context.Context, chatID string) (*chat.Chat, error)
	ListParticipants(ctx context.Context, chatID string) ([]string, error)
	SaveMessage(ctx context.Context, chatID, senderID, content string, at time.Time) (*chat.Message, error)
	ListChats(ctx context.Context, userID primitive.ObjectID) ([]chat.Summary, error)
	ListMessages(ctx context.Context, chatID primitive.ObjectID, page, limit int) ([]chat.Message, int64, error)
	MarkRead(ctx context.Context, chatID, userID primitive.ObjectID) error
}

// AppDeps bundles everything the HTTP layer needs.
type AppDeps struct {
	Config  *configs.AppConfig
	Gateway *gateway.Gateway

	Users  UserStore
	Items  ItemStore
	Trades TradeStore
	Chats  ChatStore

	Storage storage.PhotoService
	Mailer  mail.Mailer
}
