/*
Package storage provides the photo storage service for item listings.

Photos never pass through the application server: clients upload and download
directly against an S3-compatible bucket using short-lived presigned URLs, and
the API only brokers those URLs and verifies the uploaded objects.
*/
package storage

import (
	"context"
	"io"
	"time"
)

// ServiceConfig holds the credentials and location of the photo bucket.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// PhotoService is the public interface for item photo storage.
type PhotoService interface {
	// PresignUpload generates a pre-signed URL for uploading a photo.
	PresignUpload(
		ctx context.Context,
		key string,
		mimeType string,
		fileSize int64,
		duration time.Duration,
	) (string, error)

	// PresignDownload generates a pre-signed URL for viewing a photo.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)

	// Upload streams an object into the bucket on the server side.
	Upload(ctx context.Context, key, mimeType string, body io.Reader) error

	// Delete removes the photo specified by the given key.
	Delete(ctx context.Context, key string) error

	// ObjectExists reports whether an object with the key has been uploaded.
	ObjectExists(ctx context.Context, key string) (bool, error)
}

// NewPhotoService initializes and returns a concrete implementation based on
// the provided configuration. Only S3-compatible backends are supported.
func NewPhotoService(cfg ServiceConfig) (PhotoService, error) {
	return newS3Client(cfg)
}
