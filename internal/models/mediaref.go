package models

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// RefKind tells where the bytes of a media reference live.
type RefKind int

const (
	// RefInline means the bytes are embedded in the reference itself as a
	// base64 data URI. Entries normally stay inline only until the first
	// overflow migration moves them to the blob store.
	RefInline RefKind = iota
	// RefStored means the reference carries a blob-store key.
	RefStored
)

// StoredRefPrefix tags blob-store keys on the wire, inside the serialized
// timeline document.
const StoredRefPrefix = "idb:"

const dataURIPrefix = "data:"

// MediaRef is a tagged union with exactly two variants: an inline,
// self-contained encoding of the media, or a key into the blob store.
// The zero value is an empty inline reference and is reported by IsZero.
//
// On the wire (within the timeline document) a MediaRef is a single string:
// either "data:<mime>;base64,<payload>" or "idb:<key>".
type MediaRef struct {
	Kind RefKind
	// MIME is the declared media subtype; inline references only.
	MIME string
	// Data holds the base64 payload for inline references and the
	// blob-store key for stored ones.
	Data string
}

// NewInlineRef embeds payload directly, declared as mime.
func NewInlineRef(mime string, payload []byte) MediaRef {
	return MediaRef{
		Kind: RefInline,
		MIME: mime,
		Data: base64.StdEncoding.EncodeToString(payload),
	}
}

// NewStoredRef references a payload stored in the blob store under key.
func NewStoredRef(key string) MediaRef {
	return MediaRef{Kind: RefStored, Data: key}
}

func (r MediaRef) IsZero() bool {
	return r.Kind == RefInline && r.MIME == "" && r.Data == ""
}

func (r MediaRef) Inline() bool { return r.Kind == RefInline }

func (r MediaRef) Stored() bool { return r.Kind == RefStored }

// Key returns the blob-store key for stored references and "" otherwise.
func (r MediaRef) Key() string {
	if r.Kind != RefStored {
		return ""
	}
	return r.Data
}

// DataURI renders the inline wire form. Empty for stored references.
func (r MediaRef) DataURI() string {
	if r.Kind != RefInline || r.IsZero() {
		return ""
	}
	return dataURIPrefix + r.MIME + ";base64," + r.Data
}

// DecodeInline returns the declared mime and the decoded payload of an
// inline reference.
func (r MediaRef) DecodeInline() (string, []byte, error) {
	if r.Kind != RefInline {
		return "", nil, fmt.Errorf("decode inline: reference is not inline")
	}
	payload, err := base64.StdEncoding.DecodeString(r.Data)
	if err != nil {
		return "", nil, fmt.Errorf("decode inline payload: %w", err)
	}
	return r.MIME, payload, nil
}

// String renders the wire form of the reference.
func (r MediaRef) String() string {
	if r.Kind == RefStored {
		return StoredRefPrefix + r.Data
	}
	return r.DataURI()
}

// ParseMediaRef parses either wire form.
func ParseMediaRef(s string) (MediaRef, error) {
	switch {
	case strings.HasPrefix(s, StoredRefPrefix):
		key := strings.TrimPrefix(s, StoredRefPrefix)
		if key == "" {
			return MediaRef{}, fmt.Errorf("parse media reference: empty blob key")
		}
		return NewStoredRef(key), nil

	case strings.HasPrefix(s, dataURIPrefix):
		rest := strings.TrimPrefix(s, dataURIPrefix)
		mime, payload, ok := strings.Cut(rest, ";base64,")
		if !ok {
			return MediaRef{}, fmt.Errorf("parse media reference: not a base64 data URI")
		}
		return MediaRef{Kind: RefInline, MIME: mime, Data: payload}, nil

	default:
		return MediaRef{}, fmt.Errorf("parse media reference: unknown form %.16q", s)
	}
}

func (r MediaRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *MediaRef) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseMediaRef(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
