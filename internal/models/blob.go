package models

// Blob is one stored binary payload, keyed by the owning entry's id. The
// media type travels with the payload so undecorated bytes keep whatever
// subtype was known at capture time.
type Blob struct {
	Key       string
	MediaType string
	Payload   []byte
}
