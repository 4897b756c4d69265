package index

import "context"

// Repository is the small, size-capped storage slot holding the serialized
// timeline document. The document is always read and written as a whole.
type Repository interface {
	// Load returns the current document, or (nil, nil) when the slot has
	// never been written.
	Load(ctx context.Context) ([]byte, error)

	// Store replaces the document. When doc exceeds the slot's byte cap it
	// fails with common.ErrDocumentTooLarge and leaves the previous
	// document intact.
	Store(ctx context.Context, doc []byte) error
}
