// Package storage provides S3-compatible object storage for report files.
package storage

import (
	"context"
	"io"
	"time"

	"inspection_portal/platform/config"
)

// PresignedURL contains the URL and metadata for a presigned download.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// StorageService defines the object storage operations the application uses.
type StorageService interface {
	// GenerateDownloadURL creates a presigned GET URL. A non-empty
	// downloadName makes browsers save the object under that name.
	GenerateDownloadURL(ctx context.Context, bucket, fileKey, downloadName string) (*PresignedURL, error)

	// UploadFile stores reader under fileKey, replacing any existing object.
	UploadFile(ctx context.Context, bucket, fileKey, contentType string, reader io.Reader, size int64) error

	// EnsureBucketExists creates the bucket if it doesn't exist.
	EnsureBucketExists(ctx context.Context, bucket string) error
}

// Config defines the configuration interface for storage.
type Config = config.MinIOConfig
