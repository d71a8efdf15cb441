package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"ecotrade/internal/app/item"
	"ecotrade/internal/app/user"
	"ecotrade/internal/pkg/errs"
)

func TestListItemsPassesFilters(t *testing.T) {
	deps, m := newTestDeps()

	m.items.On("List", mock.Anything, item.ListFilter{
		Category: "Glass",
		Status:   "available",
		Search:   "jar",
		Page:     2,
		Limit:    10,
	}).Return([]item.Item{{Title: "Glass jars"}}, int64(1), nil).Once()

	req := jsonRequest(http.MethodGet, "/items?category=Glass&status=available&search=jar&page=2&limit=10", "")
	rec := serveRoute(t, http.MethodGet, "/items", HandleListItems(deps), req)

	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := decodeEnvelope(t, rec).Data.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, data["total"])
	m.items.AssertExpectations(t)
}

func TestGetItemNotFound(t *testing.T) {
	deps, m := newTestDeps()

	m.items.On("Get", mock.Anything, itemID).
		Return((*item.Item)(nil), mongo.ErrNoDocuments).Once()

	rec := serveRoute(t, http.MethodGet, "/items/{id}", HandleGetItem(deps),
		jsonRequest(http.MethodGet, "/items/"+itemID.Hex(), ""))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errs.ErrItemNotFound, decodeEnvelope(t, rec).Code)
}

func TestCreateItemSuccess(t *testing.T) {
	deps, m := newTestDeps()

	m.items.On("Create", mock.Anything, mock.MatchedBy(func(it *item.Item) bool {
		return it.User == ownerID && it.Title == "Copper wire spool"
	})).Return(&item.Item{ID: itemID, User: ownerID, Title: "Copper wire spool", Status: item.StatusAvailable}, nil).Once()

	body := `{
		"title": "Copper wire spool",
		"description": "About 3kg of stripped copper wire.",
		"category": "Metal",
		"condition": "good",
		"images": ["items/x/1.jpg"],
		"location": {"address": "Recycling point 4", "city": "Lisbon"}
	}`
	req := asUser(jsonRequest(http.MethodPost, "/items", body), ownerID, "Alice", user.RoleUser)
	rec := serveRoute(t, http.MethodPost, "/items", HandleCreateItem(deps), req)

	require.Equal(t, http.StatusOK, rec.Code)
	m.items.AssertExpectations(t)
}

func TestCreateItemRejectsInvalidInput(t *testing.T) {
	deps, m := newTestDeps()

	cases := []struct {
		name string
		body string
	}{
		{"short title", `{"title":"ab","description":"d","category":"Metal","condition":"good","location":{"address":"x"}}`},
		{"unknown category", `{"title":"Copper wire","description":"d","category":"Gold","condition":"good","location":{"address":"x"}}`},
		{"unknown condition", `{"title":"Copper wire","description":"d","category":"Metal","condition":"mint","location":{"address":"x"}}`},
		{"missing address", `{"title":"Copper wire","description":"d","category":"Metal","condition":"good","location":{}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := asUser(jsonRequest(http.MethodPost, "/items", tc.body), ownerID, "Alice", user.RoleUser)
			rec := serveRoute(t, http.MethodPost, "/items", HandleCreateItem(deps), req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, errs.ErrInvalidParams, decodeEnvelope(t, rec).Code)
		})
	}

	m.items.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateItemOwnerScoped(t *testing.T) {
	deps, m := newTestDeps()

	m.items.On("Update", mock.Anything, itemID, requesterID, bson.M{"title": "Fresh title"}).
		Return((*item.Item)(nil), mongo.ErrNoDocuments).Once()

	body := `{"title":"Fresh title"}`
	req := asUser(jsonRequest(http.MethodPut, "/items/"+itemID.Hex(), body), requesterID, "Bob", user.RoleUser)
	rec := serveRoute(t, http.MethodPut, "/items/{id}", HandleUpdateItem(deps), req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errs.ErrItemNotFound, decodeEnvelope(t, rec).Code)
	m.items.AssertExpectations(t)
}

func TestUpdateItemEmptyPatch(t *testing.T) {
	deps, m := newTestDeps()

	req := asUser(jsonRequest(http.MethodPut, "/items/"+itemID.Hex(), `{}`), ownerID, "Alice", user.RoleUser)
	rec := serveRoute(t, http.MethodPut, "/items/{id}", HandleUpdateItem(deps), req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	m.items.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteItemSoftDeletes(t *testing.T) {
	deps, m := newTestDeps()

	m.items.On("SoftDelete", mock.Anything, itemID, ownerID).Return(nil).Once()

	req := asUser(jsonRequest(http.MethodDelete, "/items/"+itemID.Hex(), ""), ownerID, "Alice", user.RoleUser)
	rec := serveRoute(t, http.MethodDelete, "/items/{id}", HandleDeleteItem(deps), req)

	require.Equal(t, http.StatusOK, rec.Code)
	m.items.AssertExpectations(t)
}
