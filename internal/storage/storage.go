package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound reports that no object exists under the requested
// bucket/key. Backend-specific "no such key" errors are normalized to this.
var ErrObjectNotFound = errors.New("object not found")

// Package storage contains object storage abstractions for S3-compatible
// backends. Implementations must avoid using local disk and rely on streaming
// I/O only. The workflow uses two buckets: one for uploaded source documents
// and one for generated dossiers, so every method is bucket-qualified.

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and
// the implementation will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Bucket       string
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
type Storage interface {
	// Put uploads an object under the given bucket/key from the provided reader.
	Put(ctx context.Context, bucket, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by bucket and key.
	Delete(ctx context.Context, bucket, key string) error
	// PresignGet returns a time-limited URL that can be used to download the
	// object without credentials. The object must exist.
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}
