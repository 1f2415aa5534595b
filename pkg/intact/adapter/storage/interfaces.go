// Package storage defines the object storage abstractions used by the export.
// Buckets are directories for the local backend.
package storage

import (
	"context"
	"io"
)

// StorageExecutor defines generic storage operations.
type StorageExecutor interface {
	// Upload writes data to bucket/objectName. An empty bucket uses the connection's default.
	Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error
	// Download opens bucket/objectName. The caller closes the reader.
	Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error)
	// ListObjects calls fn for every object under prefix.
	ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error
	// DeleteObject removes bucket/objectName. A missing object is not an error.
	DeleteObject(ctx context.Context, bucket, objectName string) error
}

// StorageConnection is a named storage backend.
type StorageConnection interface {
	StorageExecutor

	Type() string
	Name() string
	Close() error
}

// StorageProvider creates and caches the connections of one backend type.
type StorageProvider interface {
	GetConnection(name string) (StorageConnection, error)
	CloseAll() error
	Type() string
}

// StorageConnectionResolver resolves named storage connections.
type StorageConnectionResolver interface {
	ResolveStorageConnection(ctx context.Context, name string) (StorageConnection, error)
}
