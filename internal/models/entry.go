// Package models defines the timeline entry types and the media reference
// union they carry.
package models

import (
	"time"

	"github.com/google/uuid"
)

// MediaType classifies an entry's captured media.
type MediaType string

const (
	MediaTypePhoto MediaType = "photo"
	MediaTypeVideo MediaType = "video"
)

// NoteBlock is one text block attached to an entry. The model keeps notes as
// an ordered sequence even though the current clients edit a single active
// block.
type NoteBlock struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
	Text      string `json:"text"`
}

// Entry is one captured moment in the timeline index.
//
// Media always resolves to retrievable bytes while the entry is in the
// index: inline references carry them, stored references must point at an
// existing blob. Thumb, when set, is an inline data URI displayable without
// consulting the blob store.
type Entry struct {
	ID        string      `json:"id"`
	CreatedAt string      `json:"createdAt"`
	MediaType MediaType   `json:"mediaType"`
	Media     MediaRef    `json:"mediaReference"`
	Thumb     string      `json:"thumbReference,omitempty"`
	Notes     []NoteBlock `json:"notes"`
}

// NewEntry assigns a fresh id and creation timestamp. Both are immutable for
// the entry's lifetime.
func NewEntry(mt MediaType, ref MediaRef) Entry {
	return Entry{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		MediaType: mt,
		Media:     ref,
		Notes:     []NoteBlock{},
	}
}

// SetNote updates the active (first) note block, creating it if the entry
// has none yet.
func (e *Entry) SetNote(text string) {
	if len(e.Notes) > 0 {
		e.Notes[0].Text = text
		return
	}
	e.Notes = append(e.Notes, NoteBlock{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Text:      text,
	})
}

// ActiveNote returns the text of the active note block, or "".
func (e Entry) ActiveNote() string {
	if len(e.Notes) == 0 {
		return ""
	}
	return e.Notes[0].Text
}
