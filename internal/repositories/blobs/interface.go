package blobs

import (
	"context"

	"github.com/svetlov/medialog/internal/models"
)

// Repository is the blob store: binary media payloads keyed by entry id.
// Implementations are typically backed by the local SQLite database.
type Repository interface {
	// Put stores (or replaces) the payload under key. Atomic per key.
	Put(ctx context.Context, key string, payload []byte, mediaType string) error

	// Get returns the blob for key, or (nil, nil) when the key is absent.
	// Absence is an expected outcome (e.g. a stale reference), not an error.
	Get(ctx context.Context, key string) (*models.Blob, error)

	// Delete removes the payload under key. Deleting a missing key is a
	// no-op.
	Delete(ctx context.Context, key string) error
}
