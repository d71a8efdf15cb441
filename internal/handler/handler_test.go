package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecotrade/internal/app/gateway"
	"ecotrade/internal/configs"
	"ecotrade/internal/mocks"
	"ecotrade/internal/pkg/auth/jwt"
	"ecotrade/internal/pkg/resp"
)

type testMocks struct {
	users   *mocks.UserStoreMock
	items   *mocks.ItemStoreMock
	trades  *mocks.TradeStoreMock
	chats   *mocks.ChatStoreMock
	mailer  *mocks.MailerMock
	storage *mocks.PhotoServiceMock
}

// newTestDeps builds an AppDeps wired entirely to mocks. The gateway is real
// but empty: notifications to personal rooms with no live connection are
// silently dropped, which is the production behavior too.
func newTestDeps() (*AppDeps, *testMocks) {
	m := &testMocks{
		users:   new(mocks.UserStoreMock),
		items:   new(mocks.ItemStoreMock),
		trades:  new(mocks.TradeStoreMock),
		chats:   new(mocks.ChatStoreMock),
		mailer:  new(mocks.MailerMock),
		storage: new(mocks.PhotoServiceMock),
	}
	deps := &AppDeps{
		Config:  &configs.AppConfig{Environment: "test", JWTSecret: "test-secret"},
		Gateway: gateway.NewGateway(m.chats, nil),
		Users:   m.users,
		Items:   m.items,
		Trades:  m.trades,
		Chats:   m.chats,
		Storage: m.storage,
		Mailer:  m.mailer,
	}
	return deps, m
}

func jsonRequest(method, target, body string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, rd)
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	return r
}

// asUser attaches an authenticated identity to the request, the same way
// IdentityExtractorMiddleware does after validating a token.
func asUser(r *http.Request, id primitive.ObjectID, name, role string) *http.Request {
	payload := &jwt.Payload{ID: id.Hex(), Name: name, Role: role}
	return r.WithContext(context.WithValue(r.Context(), jwt.ContextAuthPayloadKey, payload))
}

func serveRoute(t *testing.T, method, pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) resp.JSONResponse {
	t.Helper()
	var env resp.JSONResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}
