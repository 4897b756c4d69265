// Package common defines shared constants and sentinel errors used across
// the medialog storage and media layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrDocumentTooLarge is returned by the index slot when the serialized
	// timeline document exceeds the configured byte cap. The journal treats
	// exactly this error as the overflow-migration trigger.
	ErrDocumentTooLarge = errors.New("index document too large")

	// ErrIndexOverflow is the fatal, user-visible save failure: the document
	// still exceeded the cap after migrating every inline payload out.
	ErrIndexOverflow = errors.New("index overflow after migration")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Media errors.
	ErrUnsupportedMedia = errors.New("unsupported media type")
)
