/*
Package handler provides HTTP handler functions for public profiles, profile
editing, avatar upload, and admin account moderation.
*/
package handler

import (
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"ecotrade/internal/app/user"
	"ecotrade/internal/pkg/errs"
	"ecotrade/internal/pkg/logx"
	"ecotrade/internal/pkg/req"
	"ecotrade/internal/pkg/resp"
)

const (
	maxAvatarBytes = 2 << 20

	// avatarURLTTL must outlive a page view but not much more.
	avatarURLTTL = 24 * time.Hour
)

var avatarMIMETypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// HandleGetUserProfile returns another user's public trading profile.
func HandleGetUserProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, customErr := pathObjectID(r, "id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		profile, err := deps.Users.GetPublicProfile(r.Context(), userID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": profile})
	}
}

type ProfileUpdateInput struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
	Phone    *string `json:"phone"`
	Bio      *string `json:"bio"`
}

// HandleUpdateProfile applies a partial edit to the caller's own profile.
func HandleUpdateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, callerID, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input ProfileUpdateInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Name != nil && !validName(*input.Name) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidName))
			return
		}
		if input.Bio != nil && utf8.RuneCountInString(*input.Bio) > 500 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		updated, err := deps.Users.UpdateProfile(r.Context(), callerID, user.ProfileUpdate{
			Name:     input.Name,
			Location: input.Location,
			Phone:    input.Phone,
			Bio:      input.Bio,
		})
		if err != nil {
			logx.Error(err, "failed to update profile", "user_id", callerID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": updated})
	}
}

// HandleUploadAvatar accepts a multipart image, stores it in the photo bucket
// and points the caller's profile at a presigned view URL.
func HandleUploadAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, callerID, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
		if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrRequestEntityTooLarge))
			return
		}

		file, header, err := r.FormFile("avatar")
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		defer file.Close()

		mimeType := header.Header.Get("Content-Type")
		ext, ok := avatarMIMETypes[mimeType]
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnsupportedMediaType))
			return
		}

		key := fmt.Sprintf("avatars/%s/%s.%s", callerID.Hex(), uuid.NewString(), ext)
		if err := deps.Storage.Upload(r.Context(), key, mimeType, file); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		avatarURL, err := deps.Storage.PresignDownload(r.Context(), key, avatarURLTTL)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		updated, err := deps.Users.UpdateProfile(r.Context(), callerID, user.ProfileUpdate{
			Avatar: &avatarURL,
		})
		if err != nil {
			logx.Error(err, "failed to save avatar", "user_id", callerID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": updated})
	}
}

// HandleListUserTrades returns the caller's trade requests, both sides.
// The path id must match the caller; trade history is not public.
func HandleListUserTrades(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, callerID, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		userID, customErr := pathObjectID(r, "id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if userID != callerID && payload.Role != user.RoleAdmin {
			resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
			return
		}

		trades, err := deps.Trades.ListForUser(r.Context(), userID)
		if err != nil {
			logx.Error(err, "failed to list trade requests", "user_id", userID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"tradeRequests": trades})
	}
}

// HandleListUserReviews returns the reviews a user has received.
func HandleListUserReviews(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, customErr := pathObjectID(r, "id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		reviews, err := deps.Trades.ListRatingsFor(r.Context(), userID)
		if err != nil {
			logx.Error(err, "failed to list reviews", "user_id", userID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"reviews": reviews})
	}
}

type SetUserStatusInput struct {
	IsActive bool `json:"isActive"`
}

// HandleSetUserStatus toggles an account's active flag. Admin only.
func HandleSetUserStatus(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, _, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if payload.Role != user.RoleAdmin {
			resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
			return
		}

		userID, customErr := pathObjectID(r, "id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input SetUserStatusInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := deps.Users.SetActive(r.Context(), userID, input.IsActive); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"userId":   userID.Hex(),
			"isActive": input.IsActive,
		})
	}
}
