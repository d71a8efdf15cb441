// Package mocks provides testify mocks for the store and resolver interfaces
// consumed by the gateway and the HTTP handlers.
package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecotrade/internal/app/chat"
	"ecotrade/internal/app/item"
	"ecotrade/internal/app/trade"
	"ecotrade/internal/app/user"
)

type ChatStoreMock struct {
	mock.Mock
}

func (m *ChatStoreMock) CreateOrGet(ctx context.Context, a, b primitive.ObjectID) (*chat.Chat, error) {
	args := m.Called(ctx, a, b)
	var c *chat.Chat
	if val := args.Get(0); val != nil {
		c = val.(*chat.Chat)
	}
	return c, args.Error(1)
}

func (m *ChatStoreMock) FindChatByID(ctx context.Context, chatID string) (*chat.Chat, error) {
	args := m.Called(ctx, chatID)
	var c *chat.Chat
	if val := args.Get(0); val != nil {
		c = val.(*chat.Chat)
	}
	return c, args.Error(1)
}

func (m *ChatStoreMock) ListParticipants(ctx context.Context, chatID string) ([]string, error) {
	args := m.Called(ctx, chatID)
	var ids []string
	if val := args.Get(0); val != nil {
		ids = val.([]string)
	}
	return ids, args.Error(1)
}

func (m *ChatStoreMock) SaveMessage(ctx context.Context, chatID, senderID, content string, at time.Time) (*chat.Message, error) {
	args := m.Called(ctx, chatID, senderID, content, at)
	var msg *chat.Message
	if val := args.Get(0); val != nil {
		msg = val.(*chat.Message)
	}
	return msg, args.Error(1)
}

func (m *ChatStoreMock) ListChats(ctx context.Context, userID primitive.ObjectID) ([]chat.Summary, error) {
	args := m.Called(ctx, userID)
	var list []chat.Summary
	if val := args.Get(0); val != nil {
		list = val.([]chat.Summary)
	}
	return list, args.Error(1)
}

func (m *ChatStoreMock) ListMessages(ctx context.Context, chatID primitive.ObjectID, page, limit int) ([]chat.Message, int64, error) {
	args := m.Called(ctx, chatID, page, limit)
	var list []chat.Message
	if val := args.Get(0); val != nil {
		list = val.([]chat.Message)
	}
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *ChatStoreMock) MarkRead(ctx context.Context, chatID, userID primitive.ObjectID) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}

type SenderResolverMock struct {
	mock.Mock
}

func (m *SenderResolverMock) SenderInfo(ctx context.Context, userID string) (chat.SenderInfo, error) {
	args := m.Called(ctx, userID)
	var info chat.SenderInfo
	if val := args.Get(0); val != nil {
		info = val.(chat.SenderInfo)
	}
	return info, args.Error(1)
}

type UserStoreMock struct {
	mock.Mock
}

func (m *UserStoreMock) Create(ctx context.Context, u *user.User) (*user.User, error) {
	args := m.Called(ctx, u)
	var created *user.User
	if val := args.Get(0); val != nil {
		created = val.(*user.User)
	}
	return created, args.Error(1)
}

func (m *UserStoreMock) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	var u *user.User
	if val := args.Get(0); val != nil {
		u = val.(*user.User)
	}
	return u, args.Error(1)
}

func (m *UserStoreMock) GetByID(ctx context.Context, id primitive.ObjectID) (*user.User, error) {
	args := m.Called(ctx, id)
	var u *user.User
	if val := args.Get(0); val != nil {
		u = val.(*user.User)
	}
	return u, args.Error(1)
}

func (m *UserStoreMock) GetPublicProfile(ctx context.Context, id primitive.ObjectID) (*user.PublicProfile, error) {
	args := m.Called(ctx, id)
	var p *user.PublicProfile
	if val := args.Get(0); val != nil {
		p = val.(*user.PublicProfile)
	}
	return p, args.Error(1)
}

func (m *UserStoreMock) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[string]user.Summary, error) {
	args := m.Called(ctx, ids)
	var out map[string]user.Summary
	if val := args.Get(0); val != nil {
		out = val.(map[string]user.Summary)
	}
	return out, args.Error(1)
}

func (m *UserStoreMock) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd user.ProfileUpdate) (*user.User, error) {
	args := m.Called(ctx, id, upd)
	var u *user.User
	if val := args.Get(0); val != nil {
		u = val.(*user.User)
	}
	return u, args.Error(1)
}

func (m *UserStoreMock) TouchLastLogin(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *UserStoreMock) SetResetCode(ctx context.Context, id primitive.ObjectID, code string, expiry time.Time) error {
	args := m.Called(ctx, id, code, expiry)
	return args.Error(0)
}

func (m *UserStoreMock) ResetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *UserStoreMock) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *UserStoreMock) ApplyRating(ctx context.Context, id primitive.ObjectID, rating int) error {
	args := m.Called(ctx, id, rating)
	return args.Error(0)
}

func (m *UserStoreMock) IncTotalTrades(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type ItemStoreMock struct {
	mock.Mock
}

func (m *ItemStoreMock) List(ctx context.Context, f item.ListFilter) ([]item.Item, int64, error) {
	args := m.Called(ctx, f)
	var list []item.Item
	if val := args.Get(0); val != nil {
		list = val.([]item.Item)
	}
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *ItemStoreMock) Get(ctx context.Context, id primitive.ObjectID) (*item.Item, error) {
	args := m.Called(ctx, id)
	var it *item.Item
	if val := args.Get(0); val != nil {
		it = val.(*item.Item)
	}
	return it, args.Error(1)
}

func (m *ItemStoreMock) Create(ctx context.Context, it *item.Item) (*item.Item, error) {
	args := m.Called(ctx, it)
	var created *item.Item
	if val := args.Get(0); val != nil {
		created = val.(*item.Item)
	}
	return created, args.Error(1)
}

func (m *ItemStoreMock) Update(ctx context.Context, id, owner primitive.ObjectID, set bson.M) (*item.Item, error) {
	args := m.Called(ctx, id, owner, set)
	var it *item.Item
	if val := args.Get(0); val != nil {
		it = val.(*item.Item)
	}
	return it, args.Error(1)
}

func (m *ItemStoreMock) SoftDelete(ctx context.Context, id, owner primitive.ObjectID) error {
	args := m.Called(ctx, id, owner)
	return args.Error(0)
}

func (m *ItemStoreMock) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *ItemStoreMock) ListByUser(ctx context.Context, owner primitive.ObjectID) ([]item.Item, error) {
	args := m.Called(ctx, owner)
	var list []item.Item
	if val := args.Get(0); val != nil {
		list = val.([]item.Item)
	}
	return list, args.Error(1)
}

type TradeStoreMock struct {
	mock.Mock
}

func (m *TradeStoreMock) CreateRequest(ctx context.Context, r *trade.Request) (*trade.Request, error) {
	args := m.Called(ctx, r)
	var created *trade.Request
	if val := args.Get(0); val != nil {
		created = val.(*trade.Request)
	}
	return created, args.Error(1)
}

func (m *TradeStoreMock) HasOpenRequest(ctx context.Context, itemID, recipient primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, itemID, recipient)
	return args.Bool(0), args.Error(1)
}

func (m *TradeStoreMock) GetRequest(ctx context.Context, id primitive.ObjectID) (*trade.Request, error) {
	args := m.Called(ctx, id)
	var r *trade.Request
	if val := args.Get(0); val != nil {
		r = val.(*trade.Request)
	}
	return r, args.Error(1)
}

func (m *TradeStoreMock) SetRequestStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *TradeStoreMock) CompleteRequest(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TradeStoreMock) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]trade.Request, error) {
	args := m.Called(ctx, userID)
	var list []trade.Request
	if val := args.Get(0); val != nil {
		list = val.([]trade.Request)
	}
	return list, args.Error(1)
}

func (m *TradeStoreMock) CreateRating(ctx context.Context, r *trade.Rating) (*trade.Rating, error) {
	args := m.Called(ctx, r)
	var created *trade.Rating
	if val := args.Get(0); val != nil {
		created = val.(*trade.Rating)
	}
	return created, args.Error(1)
}

func (m *TradeStoreMock) ListRatingsFor(ctx context.Context, rated primitive.ObjectID) ([]trade.Rating, error) {
	args := m.Called(ctx, rated)
	var list []trade.Rating
	if val := args.Get(0); val != nil {
		list = val.([]trade.Rating)
	}
	return list, args.Error(1)
}

// MailerMock is a testify mock for the outbound mailer.
type MailerMock struct {
	mock.Mock
}

func (m *MailerMock) Send(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

// PhotoServiceMock is a testify mock for the photo storage service.
type PhotoServiceMock struct {
	mock.Mock
}

func (m *PhotoServiceMock) PresignUpload(ctx context.Context, key, mimeType string, fileSize int64, duration time.Duration) (string, error) {
	args := m.Called(ctx, key, mimeType, fileSize, duration)
	return args.String(0), args.Error(1)
}

func (m *PhotoServiceMock) PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error) {
	args := m.Called(ctx, key, duration)
	return args.String(0), args.Error(1)
}

func (m *PhotoServiceMock) Upload(ctx context.Context, key, mimeType string, body io.Reader) error {
	args := m.Called(ctx, key, mimeType, body)
	return args.Error(0)
}

func (m *PhotoServiceMock) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *PhotoServiceMock) ObjectExists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
