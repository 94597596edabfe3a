// Package storage provides object storage abstractions for monitoring artifacts.
package storage

import (
	"context"
	"errors"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrUploadFailed   = errors.New("upload failed")
	ErrDownloadFailed = errors.New("download failed")
)

// ObjectStorage abstracts object storage for datasets, capture files, and
// baseline documents. Implementations include S3 and a local filesystem
// variant for testing.
type ObjectStorage interface {
	// PutObject writes data under the given key.
	PutObject(ctx context.Context, key string, data []byte) error

	// GetObject reads the object under the given key into memory.
	// Monitoring artifacts (CSV datasets, capture files, baseline JSON)
	// are small, so whole-object reads are fine.
	GetObject(ctx context.Context, key string) ([]byte, error)

	// Exists checks if an object exists.
	Exists(ctx context.Context, key string) (bool, error)

	// ListObjects returns all object keys under the given prefix,
	// in lexicographic order.
	ListObjects(ctx context.Context, prefix string) ([]string, error)

	// Bucket returns the bucket name the storage is bound to.
	Bucket() string
}
