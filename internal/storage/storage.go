package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/templui/filesmanager/internal/config"
)

var ErrNotFound = errors.New("blob not found")

// Storage defines the interface for blob storage operations.
// Paths are opaque keys returned by Path; stored blobs are never modified in place.
type Storage interface {
	// Path returns the location a blob with the given name is stored at
	Path(name string) string

	// Write stores data at path
	Write(ctx context.Context, path string, data []byte) error

	// Read returns the blob at path or ErrNotFound
	Read(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether a blob is stored at path
	Exists(ctx context.Context, path string) (bool, error)
}

// New creates the storage backend selected by STORAGE_DRIVER.
func New(ctx context.Context, c *config.Config) (Storage, error) {
	switch c.StorageDriver {
	case "fs":
		slog.Info("initializing local storage", "path", c.FolderPath)
		return NewLocalStorage(c.FolderPath)
	case "s3":
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(ctx, S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", c.StorageDriver)
	}
}
