// Package blobs provides keyed binary storage for assets and snapshots.
// Payloads arrive pre-encrypted from clients; the store treats them as
// opaque bytes. Two backends exist: S3-compatible object storage for
// deployments and an in-memory map for tests and local development.
package blobs

import (
	"context"
	"time"
)

// Object describes a stored blob without its payload.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store is keyed byte storage with last-write-wins upsert semantics. Keys
// are opaque, path-like strings; there is no reconciliation at this layer.
type Store interface {
	// Get returns the payload for key or common.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores the payload under key, silently overwriting any
	// previous payload for the same key.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes the payload for key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error

	// List returns metadata for every object whose key starts with
	// prefix.
	List(ctx context.Context, prefix string) ([]Object, error)
}
