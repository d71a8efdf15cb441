package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"ecotrade/internal/app/trade"
	"ecotrade/internal/app/user"
	"ecotrade/internal/pkg/errs"
)

func TestGetUserProfilePublic(t *testing.T) {
	deps, m := newTestDeps()

	m.users.On("GetPublicProfile", mock.Anything, chatPeerID).
		Return(&user.PublicProfile{ID: chatPeerID, Name: "Bob", Rating: 4.5}, nil).Once()

	rec := serveRoute(t, http.MethodGet, "/users/{id}", HandleGetUserProfile(deps),
		jsonRequest(http.MethodGet, "/users/"+chatPeerID.Hex(), ""))

	require.Equal(t, http.StatusOK, rec.Code)
	m.users.AssertExpectations(t)
}

func TestGetUserProfileUnknown(t *testing.T) {
	deps, m := newTestDeps()

	m.users.On("GetPublicProfile", mock.Anything, chatPeerID).
		Return((*user.PublicProfile)(nil), mongo.ErrNoDocuments).Once()

	rec := serveRoute(t, http.MethodGet, "/users/{id}", HandleGetUserProfile(deps),
		jsonRequest(http.MethodGet, "/users/"+chatPeerID.Hex(), ""))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errs.ErrUserNotFound, decodeEnvelope(t, rec).Code)
}

func TestUpdateProfilePartial(t *testing.T) {
	deps, m := newTestDeps()

	m.users.On("UpdateProfile", mock.Anything, chatCallerID, mock.MatchedBy(func(upd user.ProfileUpdate) bool {
		return upd.Name != nil && *upd.Name == "Alice B." && upd.Bio == nil
	})).Return(&user.User{ID: chatCallerID, Name: "Alice B."}, nil).Once()

	body := `{"name":"Alice B."}`
	req := asUser(jsonRequest(http.MethodPut, "/users/profile", body), chatCallerID, "Alice", user.RoleUser)
	rec := serveRoute(t, http.MethodPut, "/users/profile", HandleUpdateProfile(deps), req)

	require.Equal(t, http.StatusOK, rec.Code)
	m.users.AssertExpectations(t)
}

func TestUpdateProfileRejectsBadName(t *testing.T) {
	deps, m := newTestDeps()

	body := `{"name":"A"}`
	req := asUser(jsonRequest(http.MethodPut, "/users/profile", body), chatCallerID, "Alice", user.RoleUser)
	rec := serveRoute(t, http.MethodPut, "/users/profile", HandleUpdateProfile(deps), req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errs.ErrInvalidName, decodeEnvelope(t, rec).Code)
	m.users.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
}

func TestListUserTradesOwnOnly(t *testing.T) {
	deps, m := newTestDeps()

	req := asUser(jsonRequest(http.MethodGet, "/users/"+chatPeerID.Hex()+"/trade-requests", ""),
		chatCallerID, "Alice", user.RoleUser)
	rec := serveRoute(t, http.MethodGet, "/users/{id}/trade-requests", HandleListUserTrades(deps), req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	m.trades.AssertNotCalled(t, "ListForUser", mock.Anything, mock.Anything)
}

func TestListUserTradesAdminOverride(t *testing.T) {
	deps, m := newTestDeps()

	m.trades.On("ListForUser", mock.Anything, chatPeerID).
		Return([]trade.Request{{Status: trade.StatusPending}}, nil).Once()

	req := asUser(jsonRequest(http.MethodGet, "/users/"+chatPeerID.Hex()+"/trade-requests", ""),
		chatCallerID, "Admin", user.RoleAdmin)
	rec := serveRoute(t, http.MethodGet, "/users/{id}/trade-requests", HandleListUserTrades(deps), req)

	require.Equal(t, http.StatusOK, rec.Code)
	m.trades.AssertExpectations(t)
}

func TestListUserReviewsPublic(t *testing.T) {
	deps, m := newTestDeps()

	m.trades.On("ListRatingsFor", mock.Anything, chatPeerID).
		Return([]trade.Rating{{Rating: 5, Review: "Great"}}, nil).Once()

	rec := serveRoute(t, http.MethodGet, "/users/{id}/reviews", HandleListUserReviews(deps),
		jsonRequest(http.MethodGet, "/users/"+chatPeerID.Hex()+"/reviews", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	m.trades.AssertExpectations(t)
}

func TestSetUserStatusAdminOnly(t *testing.T) {
	deps, m := newTestDeps()

	body := `{"isActive":false}`
	req := asUser(jsonRequest(http.MethodPatch, "/users/"+chatPeerID.Hex()+"/status", body),
		chatCallerID, "Alice", user.RoleUser)
	rec := serveRoute(t, http.MethodPatch, "/users/{id}/status", HandleSetUserStatus(deps), req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	m.users.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetUserStatusDeactivates(t *testing.T) {
	deps, m := newTestDeps()

	m.users.On("SetActive", mock.Anything, chatPeerID, false).Return(nil).Once()

	body := `{"isActive":false}`
	req := asUser(jsonRequest(http.MethodPatch, "/users/"+chatPeerID.Hex()+"/status", body),
		chatCallerID, "Admin", user.RoleAdmin)
	rec := serveRoute(t, http.MethodPatch, "/users/{id}/status", HandleSetUserStatus(deps), req)

	require.Equal(t, http.StatusOK, rec.Code)
	m.users.AssertExpectations(t)
}
