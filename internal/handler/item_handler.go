/*
Package handler provides HTTP handler functions for marketplace listings.
*/
package handler

import (
	"net/http"
	"strconv"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson"

	"ecotrade/internal/app/db"
	"ecotrade/internal/app/item"
	"ecotrade/internal/pkg/errs"
	"ecotrade/internal/pkg/logx"
	"ecotrade/internal/pkg/req"
	"ecotrade/internal/pkg/resp"
)

const (
	maxTitleLength       = 100
	maxDescriptionLength = 1000
	maxItemImages        = 5
)

// HandleListItems returns one page of the public marketplace.
func HandleListItems(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		page, _ := strconv.Atoi(query.Get("page"))
		limit, _ := strconv.Atoi(query.Get("limit"))

		filter := item.ListFilter{
			Category:  query.Get("category"),
			Condition: query.Get("condition"),
			Status:    query.Get("status"),
			Search:    query.Get("search"),
			Page:      page,
			Limit:     limit,
		}

		items, total, err := deps.Items.List(r.Context(), filter)
		if err != nil {
			logx.Error(err, "failed to list items")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"items": items,
			"total": total,
		})
	}
}

// HandleGetItem returns a single listing and counts the view.
func HandleGetItem(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, customErr := pathObjectID(r, "id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		it, err := deps.Items.Get(r.Context(), itemID)
		if err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrItemNotFound))
				return
			}
			logx.Error(err, "failed to fetch item", "item_id", itemID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		// Attach the owner's public card so a listing page needs one request.
		owner, err := deps.Users.GetPublicProfile(r.Context(), it.User)
		if err != nil {
			logx.Warn("item owner profile missing", "item_id", itemID.Hex(), "user_id", it.User.Hex())
		}

		resp.RespondSuccess(w, r, map[string]any{
			"item":  it,
			"owner": owner,
		})
	}
}

type ItemInput struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Condition   string        `json:"condition"`
	Images      []string      `json:"images"`
	Location    item.Location `json:"location"`
}

func (in *ItemInput) validate() *errs.CustomError {
	titleLen := utf8.RuneCountInString(in.Title)
	if titleLen < 3 || titleLen > maxTitleLength {
		return errs.NewError(errs.ErrInvalidParams)
	}
	if in.Description == "" || utf8.RuneCountInString(in.Description) > maxDescriptionLength {
		return errs.NewError(errs.ErrInvalidParams)
	}
	if !item.ValidCategory(in.Category) {
		return errs.NewError(errs.ErrInvalidParams)
	}
	if !item.ValidCondition(in.Condition) {
		return errs.NewError(errs.ErrInvalidParams)
	}
	if len(in.Images) > maxItemImages {
		return errs.NewError(errs.ErrInvalidParams)
	}
	if in.Location.Address == "" {
		return errs.NewError(errs.ErrInvalidParams)
	}
	return nil
}

// HandleCreateItem publishes a new listing owned by the caller.
func HandleCreateItem(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, callerID, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input ItemInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if customErr := input.validate(); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		created, err := deps.Items.Create(r.Context(), &item.Item{
			User:        callerID,
			Title:       input.Title,
			Description: input.Description,
			Category:    input.Category,
			Condition:   input.Condition,
			Images:      input.Images,
			Location:    input.Location,
		})
		if err != nil {
			logx.Error(err, "failed to create item")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"item": created})
	}
}

type ItemUpdateInput struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Category    *string        `json:"category"`
	Condition   *string        `json:"condition"`
	Images      *[]string      `json:"images"`
	Location    *item.Location `json:"location"`
}

// HandleUpdateItem edits a listing; only the owner can do so.
func HandleUpdateItem(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, callerID, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		itemID, customErr := pathObjectID(r, "id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input ItemUpdateInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		set := bson.M{}
		if input.Title != nil {
			titleLen := utf8.RuneCountInString(*input.Title)
			if titleLen < 3 || titleLen > maxTitleLength {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			set["title"] = *input.Title
		}
		if input.Description != nil {
			if *input.Description == "" || utf8.RuneCountInString(*input.Description) > maxDescriptionLength {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			set["description"] = *input.Description
		}
		if input.Category != nil {
			if !item.ValidCategory(*input.Category) {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			set["category"] = *input.Category
		}
		if input.Condition != nil {
			if !item.ValidCondition(*input.Condition) {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			set["condition"] = *input.Condition
		}
		if input.Images != nil {
			if len(*input.Images) > maxItemImages {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			set["images"] = *input.Images
		}
		if input.Location != nil {
			if input.Location.Address == "" {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			set["location"] = *input.Location
		}

		if len(set) == 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		updated, err := deps.Items.Update(r.Context(), itemID, callerID, set)
		if err != nil {
			if db.IsNotFound(err) {
				// Unknown id and someone else's listing look the same.
				resp.RespondError(w, r, errs.NewError(errs.ErrItemNotFound))
				return
			}
			logx.Error(err, "failed to update item", "item_id", itemID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"item": updated})
	}
}

// HandleDeleteItem hides a listing; only the owner can do so. The document is
// kept so existing trade requests and chats stay coherent.
func HandleDeleteItem(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, callerID, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		itemID, customErr := pathObjectID(r, "id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := deps.Items.SoftDelete(r.Context(), itemID, callerID); err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrItemNotFound))
				return
			}
			logx.Error(err, "failed to delete item", "item_id", itemID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]string{"message": "Item removed."})
	}
}

// HandleListUserItems returns another user's visible listings.
func HandleListUserItems(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, customErr := pathObjectID(r, "userId")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		items, err := deps.Items.ListByUser(r.Context(), ownerID)
		if err != nil {
			logx.Error(err, "failed to list user items", "user_id", ownerID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"items": items})
	}
}
