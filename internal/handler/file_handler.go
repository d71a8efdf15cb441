/*
Package handler provides HTTP handler functions for presigned photo transfers.

Item photos never pass through the application server: clients upload and
download directly against the S3 bucket using short-lived presigned URLs.
*/
package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"ecotrade/internal/pkg/errs"
	"ecotrade/internal/pkg/req"
	"ecotrade/internal/pkg/resp"
)

const (
	maxPhotoBytes = 5 << 20

	// presignedURLTTL bounds how long a handed-out URL stays usable.
	presignedURLTTL = 15 * time.Minute
)

var photoMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

type PresignUploadInput struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// HandlePresignPhotoUpload returns a time-limited URL the client PUTs an item
// photo against. The object key is scoped under the caller's id so an upload
// can never overwrite another user's photos.
func HandlePresignPhotoUpload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, callerID, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input PresignUploadInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.FileSize <= 0 || input.FileSize > maxPhotoBytes {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		if _, ok := photoMIMETypes[input.MimeType]; !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnsupportedMediaType))
			return
		}

		ext := strings.ToLower(filepath.Ext(input.FileName))
		key := fmt.Sprintf("items/%s/%s%s", callerID.Hex(), uuid.NewString(), ext)

		url, err := deps.Storage.PresignUpload(r.Context(), key, input.MimeType, input.FileSize, presignedURLTTL)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"presignedUrl": url,
			"fileKey":      key,
			"fileName":     input.FileName,
		})
	}
}

// HandlePresignPhotoDownload returns a time-limited URL for viewing a stored
// photo. Keys outside the item photo prefix are rejected.
func HandlePresignPhotoDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		key := r.URL.Query().Get("key")
		if key == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		if !strings.HasPrefix(key, "items/") && !strings.HasPrefix(key, "avatars/") {
			resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
			return
		}

		url, err := deps.Storage.PresignDownload(r.Context(), key, presignedURLTTL)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"presignedUrl": url})
	}
}
