// Package journal is the timeline index store: the ordered collection of
// entry metadata, serialized as one JSON document in a size-capped slot,
// plus the overflow migration that moves inline media into the blob store
// when the document no longer fits.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/svetlov/medialog/internal/common"
	"github.com/svetlov/medialog/internal/dbx"
	"github.com/svetlov/medialog/internal/logging"
	"github.com/svetlov/medialog/internal/models"
	"github.com/svetlov/medialog/internal/notify"
	"github.com/svetlov/medialog/internal/repositories/blobs"
	"github.com/svetlov/medialog/internal/repositories/index"
)

// PhotoThumbnailer derives an inline still-image preview from photo bytes.
// An empty result means "no thumbnail" and is acceptable.
type PhotoThumbnailer interface {
	FromPhoto(ctx context.Context, payload []byte) string
}

// Stats reports how full the index slot is.
type Stats struct {
	Entries       int
	DocumentBytes int
	MaxBytes      int
}

type Service interface {
	// ReadAll returns every entry in insertion order. A missing or
	// malformed document yields an empty sequence, never an error.
	ReadAll(ctx context.Context) []models.Entry

	// WriteAll replaces the whole document. On overflow it migrates inline
	// media to the blob store and retries once; a second overflow surfaces
	// as common.ErrIndexOverflow.
	WriteAll(ctx context.Context, entries []models.Entry) error

	// Append adds one entry at the end.
	Append(ctx context.Context, e models.Entry) error

	// Replace substitutes the entry with a matching id.
	Replace(ctx context.Context, e models.Entry) error

	// SetThumbnail maps an inline thumbnail onto the entry with the given
	// id. Used by the background video write-back.
	SetThumbnail(ctx context.Context, id, thumb string) error

	// SetNote creates or updates the active note block of an entry.
	SetNote(ctx context.Context, id, text string) error

	// Delete removes the entry and best-effort deletes its stored blob.
	Delete(ctx context.Context, id string) error

	// Stats returns entry count and document size.
	Stats(ctx context.Context) (Stats, error)
}

type timelineService struct {
	db       *sql.DB
	maxBytes int
	photos   PhotoThumbnailer
	broker   *notify.Broker
	log      logging.Logger
}

// NewService builds the index store over db. photos may be nil, in which
// case migrated photos simply keep no thumbnail. Every successful mutation
// publishes on broker.
func NewService(db *sql.DB, maxBytes int, photos PhotoThumbnailer, broker *notify.Broker, log logging.Logger) Service {
	if log == nil {
		log = logging.Nop()
	}
	return &timelineService{db: db, maxBytes: maxBytes, photos: photos, broker: broker, log: log}
}

func (s *timelineService) slot(db dbx.DBTX) index.Repository {
	return index.NewSQLiteRepository(db, s.maxBytes)
}

// decode favors availability over strict validation: any defect in the
// persisted document yields an empty index.
func (s *timelineService) decode(ctx context.Context, doc []byte) []models.Entry {
	if len(doc) == 0 {
		return []models.Entry{}
	}
	var entries []models.Entry
	if err := json.Unmarshal(doc, &entries); err != nil {
		s.log.Warn(ctx, "malformed timeline document, treating as empty", "err", err)
		return []models.Entry{}
	}
	return entries
}

func (s *timelineService) ReadAll(ctx context.Context) []models.Entry {
	doc, err := s.slot(s.db).Load(ctx)
	if err != nil {
		s.log.Warn(ctx, "failed to load timeline document, treating as empty", "err", err)
		return []models.Entry{}
	}
	return s.decode(ctx, doc)
}

// writeAll marshals and stores entries on tx, running the overflow
// migration and a single retry when the slot rejects the document.
func (s *timelineService) writeAll(ctx context.Context, tx dbx.DBTX, entries []models.Entry) error {
	doc, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal timeline document: %w", err)
	}

	slot := s.slot(tx)
	err = slot.Store(ctx, doc)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrDocumentTooLarge) {
		return err
	}

	s.log.Info(ctx, "index slot overflow, migrating inline media to blob store",
		"doc_bytes", len(doc))

	migrated := s.migrate(ctx, tx, entries)

	doc, err = json.Marshal(migrated)
	if err != nil {
		return fmt.Errorf("marshal migrated timeline document: %w", err)
	}
	if err := slot.Store(ctx, doc); err != nil {
		if errors.Is(err, common.ErrDocumentTooLarge) {
			return fmt.Errorf("save failed: %w", common.ErrIndexOverflow)
		}
		return err
	}
	return nil
}

// migrate transcodes every inline media reference into a blob-store payload
// keyed by the entry id, synthesizing photo thumbnails before the inline
// bytes leave the document. A failing entry keeps its original form; the
// rest of the migration proceeds. Already-stored entries pass through
// untouched, so running migrate on a migrated index is a no-op.
func (s *timelineService) migrate(ctx context.Context, tx dbx.DBTX, entries []models.Entry) []models.Entry {
	blobRepo := blobs.NewSQLiteRepository(tx)

	out := make([]models.Entry, len(entries))
	for i, e := range entries {
		out[i] = e
		if !e.Media.Inline() || e.Media.IsZero() {
			continue
		}

		mime, payload, err := e.Media.DecodeInline()
		if err != nil {
			s.log.Warn(ctx, "cannot decode inline media, keeping entry inline",
				"entry_id", e.ID, "err", err)
			continue
		}

		if err := blobRepo.Put(ctx, e.ID, payload, mime); err != nil {
			s.log.Warn(ctx, "cannot move inline media to blob store, keeping entry inline",
				"entry_id", e.ID, "err", err)
			continue
		}

		if e.MediaType == models.MediaTypePhoto && e.Thumb == "" && s.photos != nil {
			out[i].Thumb = s.photos.FromPhoto(ctx, payload)
		}
		out[i].Media = models.NewStoredRef(e.ID)
	}
	return out
}

func (s *timelineService) WriteAll(ctx context.Context, entries []models.Entry) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.writeAll(ctx, tx, entries)
	})
	if err != nil {
		return err
	}
	s.publish()
	return nil
}

// mutate runs a read-modify-write cycle over the whole document inside one
// transaction and publishes the change signal on success.
func (s *timelineService) mutate(ctx context.Context, fn func([]models.Entry) ([]models.Entry, error)) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		doc, err := s.slot(tx).Load(ctx)
		if err != nil {
			return err
		}
		entries, err := fn(s.decode(ctx, doc))
		if err != nil {
			return err
		}
		return s.writeAll(ctx, tx, entries)
	})
	if err != nil {
		return err
	}
	s.publish()
	return nil
}

func (s *timelineService) publish() {
	if s.broker != nil {
		s.broker.Publish()
	}
}

func (s *timelineService) Append(ctx context.Context, e models.Entry) error {
	return s.mutate(ctx, func(entries []models.Entry) ([]models.Entry, error) {
		for _, existing := range entries {
			if existing.ID == e.ID {
				return nil, fmt.Errorf("append entry %s: id already in index", e.ID)
			}
		}
		return append(entries, e), nil
	})
}

func (s *timelineService) Replace(ctx context.Context, e models.Entry) error {
	return s.mutate(ctx, func(entries []models.Entry) ([]models.Entry, error) {
		for i := range entries {
			if entries[i].ID == e.ID {
				entries[i] = e
				return entries, nil
			}
		}
		return nil, fmt.Errorf("replace entry %s: %w", e.ID, common.ErrorNotFound)
	})
}

func (s *timelineService) SetThumbnail(ctx context.Context, id, thumb string) error {
	return s.mutate(ctx, func(entries []models.Entry) ([]models.Entry, error) {
		for i := range entries {
			if entries[i].ID == id {
				entries[i].Thumb = thumb
				return entries, nil
			}
		}
		return nil, fmt.Errorf("set thumbnail on %s: %w", id, common.ErrorNotFound)
	})
}

func (s *timelineService) SetNote(ctx context.Context, id, text string) error {
	return s.mutate(ctx, func(entries []models.Entry) ([]models.Entry, error) {
		for i := range entries {
			if entries[i].ID == id {
				entries[i].SetNote(text)
				return entries, nil
			}
		}
		return nil, fmt.Errorf("set note on %s: %w", id, common.ErrorNotFound)
	})
}

func (s *timelineService) Delete(ctx context.Context, id string) error {
	var blobKey string

	err := s.mutate(ctx, func(entries []models.Entry) ([]models.Entry, error) {
		out := entries[:0]
		found := false
		for _, e := range entries {
			if e.ID == id {
				found = true
				blobKey = e.Media.Key()
				continue
			}
			out = append(out, e)
		}
		if !found {
			return nil, fmt.Errorf("delete entry %s: %w", id, common.ErrorNotFound)
		}
		return out, nil
	})
	if err != nil {
		return err
	}

	// Best effort: a blob briefly outliving its index entry is an accepted
	// state, a dangling reference is not worth failing the delete over.
	if blobKey != "" {
		if derr := blobs.NewSQLiteRepository(s.db).Delete(ctx, blobKey); derr != nil {
			s.log.Warn(ctx, "stale blob left behind after delete", "entry_id", id, "err", derr)
		}
	}
	return nil
}

func (s *timelineService) Stats(ctx context.Context) (Stats, error) {
	doc, err := s.slot(s.db).Load(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Entries:       len(s.decode(ctx, doc)),
		DocumentBytes: len(doc),
		MaxBytes:      s.maxBytes,
	}, nil
}
