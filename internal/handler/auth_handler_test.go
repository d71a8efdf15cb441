package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"ecotrade/internal/app/user"
	"ecotrade/internal/pkg/errs"
)

var testUserID = func() primitive.ObjectID {
	oid, _ := primitive.ObjectIDFromHex("64b000000000000000000001")
	return oid
}()

func TestRegisterSuccess(t *testing.T) {
	deps, m := newTestDeps()

	m.users.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).
		Return(&user.User{ID: testUserID, Name: "Alice", Email: "alice@example.com", Role: user.RoleUser}, nil).Once()

	body := `{"name":"Alice","email":"alice@example.com","password":"secret123"}`
	rec := serveRoute(t, http.MethodPost, "/register", HandleRegister(deps), jsonRequest(http.MethodPost, "/register", body))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, 0, env.Code)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, data["token"])
	m.users.AssertExpectations(t)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	deps, m := newTestDeps()

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	m.users.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).
		Return((*user.User)(nil), dup).Once()

	body := `{"name":"Alice","email":"alice@example.com","password":"secret123"}`
	rec := serveRoute(t, http.MethodPost, "/register", HandleRegister(deps), jsonRequest(http.MethodPost, "/register", body))

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, errs.ErrUserAlreadyExists, decodeEnvelope(t, rec).Code)
	m.users.AssertExpectations(t)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	deps, _ := newTestDeps()

	cases := []struct {
		name string
		body string
		code int
	}{
		{"short name", `{"name":"A","email":"a@b.co","password":"secret123"}`, errs.ErrInvalidName},
		{"bad email", `{"name":"Alice","email":"not-an-email","password":"secret123"}`, errs.ErrInvalidEmail},
		{"short password", `{"name":"Alice","email":"a@b.co","password":"abc"}`, errs.ErrInvalidPassword},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serveRoute(t, http.MethodPost, "/register", HandleRegister(deps), jsonRequest(http.MethodPost, "/register", tc.body))
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.code, decodeEnvelope(t, rec).Code)
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	deps, m := newTestDeps()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	account := &user.User{
		ID:           testUserID,
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		Role:         user.RoleUser,
		IsActive:     true,
	}
	m.users.On("GetByEmail", mock.Anything, "alice@example.com").Return(account, nil).Once()
	m.users.On("TouchLastLogin", mock.Anything, testUserID).Return(nil).Once()

	body := `{"email":"alice@example.com","password":"secret123"}`
	rec := serveRoute(t, http.MethodPost, "/login", HandleLogin(deps), jsonRequest(http.MethodPost, "/login", body))

	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := decodeEnvelope(t, rec).Data.(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, data["token"])
	m.users.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	deps, m := newTestDeps()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	m.users.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&user.User{ID: testUserID, PasswordHash: string(hash), IsActive: true}, nil).Once()

	body := `{"email":"alice@example.com","password":"wrong-password"}`
	rec := serveRoute(t, http.MethodPost, "/login", HandleLogin(deps), jsonRequest(http.MethodPost, "/login", body))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, errs.ErrInvalidCredentials, decodeEnvelope(t, rec).Code)
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	deps, m := newTestDeps()

	m.users.On("GetByEmail", mock.Anything, "ghost@example.com").
		Return((*user.User)(nil), mongo.ErrNoDocuments).Once()

	body := `{"email":"ghost@example.com","password":"secret123"}`
	rec := serveRoute(t, http.MethodPost, "/login", HandleLogin(deps), jsonRequest(http.MethodPost, "/login", body))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, errs.ErrInvalidCredentials, decodeEnvelope(t, rec).Code)
}

func TestLoginDisabledAccount(t *testing.T) {
	deps, m := newTestDeps()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	m.users.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&user.User{ID: testUserID, PasswordHash: string(hash), IsActive: false}, nil).Once()

	body := `{"email":"alice@example.com","password":"secret123"}`
	rec := serveRoute(t, http.MethodPost, "/login", HandleLogin(deps), jsonRequest(http.MethodPost, "/login", body))

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, errs.ErrAccountDisabled, decodeEnvelope(t, rec).Code)
	m.users.AssertNotCalled(t, "TouchLastLogin", mock.Anything, mock.Anything)
}

func TestForgotPasswordResponseDoesNotLeakAccounts(t *testing.T) {
	deps, m := newTestDeps()

	m.users.On("GetByEmail", mock.Anything, "known@example.com").
		Return(&user.User{ID: testUserID, Email: "known@example.com"}, nil).Once()
	m.users.On("SetResetCode", mock.Anything, testUserID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	m.mailer.On("Send", "known@example.com", mock.AnythingOfType("string"), mock.AnythingOfType("string")).
		Return(nil).Once()

	m.users.On("GetByEmail", mock.Anything, "ghost@example.com").
		Return((*user.User)(nil), mongo.ErrNoDocuments).Once()

	recKnown := serveRoute(t, http.MethodPost, "/forgot-password", HandleForgotPassword(deps),
		jsonRequest(http.MethodPost, "/forgot-password", `{"email":"known@example.com"}`))
	recGhost := serveRoute(t, http.MethodPost, "/forgot-password", HandleForgotPassword(deps),
		jsonRequest(http.MethodPost, "/forgot-password", `{"email":"ghost@example.com"}`))

	require.Equal(t, http.StatusOK, recKnown.Code)
	require.Equal(t, http.StatusOK, recGhost.Code)
	assert.Equal(t, recKnown.Body.String(), recGhost.Body.String())
	m.users.AssertExpectations(t)
	m.mailer.AssertExpectations(t)
}

func TestResetPasswordWithValidCode(t *testing.T) {
	deps, m := newTestDeps()

	expiry := time.Now().Add(10 * time.Minute)
	m.users.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&user.User{ID: testUserID, Email: "alice@example.com", ResetCode: "123456", ResetCodeExpiry: &expiry}, nil).Once()
	m.users.On("ResetPassword", mock.Anything, testUserID, mock.AnythingOfType("string")).Return(nil).Once()

	body := `{"email":"alice@example.com","code":"123456","newPassword":"brandnew1"}`
	rec := serveRoute(t, http.MethodPost, "/reset-password", HandleResetPassword(deps), jsonRequest(http.MethodPost, "/reset-password", body))

	require.Equal(t, http.StatusOK, rec.Code)
	m.users.AssertExpectations(t)
}

func TestResetPasswordRejectsWrongOrExpiredCode(t *testing.T) {
	deps, m := newTestDeps()

	expired := time.Now().Add(-time.Minute)
	m.users.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&user.User{ID: testUserID, ResetCode: "123456", ResetCodeExpiry: &expired}, nil).Twice()

	wrongCode := `{"email":"alice@example.com","code":"999999","newPassword":"brandnew1"}`
	rec := serveRoute(t, http.MethodPost, "/reset-password", HandleResetPassword(deps), jsonRequest(http.MethodPost, "/reset-password", wrongCode))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errs.ErrResetCodeInvalid, decodeEnvelope(t, rec).Code)

	expiredCode := `{"email":"alice@example.com","code":"123456","newPassword":"brandnew1"}`
	rec = serveRoute(t, http.MethodPost, "/reset-password", HandleResetPassword(deps), jsonRequest(http.MethodPost, "/reset-password", expiredCode))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errs.ErrResetCodeInvalid, decodeEnvelope(t, rec).Code)

	m.users.AssertNotCalled(t, "ResetPassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetMeRequiresAuthentication(t *testing.T) {
	deps, _ := newTestDeps()

	rec := serveRoute(t, http.MethodGet, "/me", HandleGetMe(deps), jsonRequest(http.MethodGet, "/me", ""))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, errs.ErrUnauthorized, decodeEnvelope(t, rec).Code)
}

func TestGetMeReturnsAccount(t *testing.T) {
	deps, m := newTestDeps()

	m.users.On("GetByID", mock.Anything, testUserID).
		Return(&user.User{ID: testUserID, Name: "Alice"}, nil).Once()

	req := asUser(jsonRequest(http.MethodGet, "/me", ""), testUserID, "Alice", user.RoleUser)
	rec := serveRoute(t, http.MethodGet, "/me", HandleGetMe(deps), req)

	require.Equal(t, http.StatusOK, rec.Code)
	m.users.AssertExpectations(t)
}
