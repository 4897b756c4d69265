// Package index persists the timeline document in a single key/value slot,
// mirroring the small fast storage tier the index lives in. The slot key is
// version-tagged; an incompatible future format gets a new key rather than a
// schema version field.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/svetlov/medialog/internal/common"
	"github.com/svetlov/medialog/internal/dbx"
)

// SlotKey names the timeline document slot.
const SlotKey = "timeline.v2"

// SQLiteRepository implements Repository over a DBTX. The byte cap stands in
// for the storage slot's size limit and is enforced before the write, so a
// too-large document never replaces the previous one.
type SQLiteRepository struct {
	db       dbx.DBTX
	maxBytes int
}

// NewSQLiteRepository binds the slot to db. maxBytes <= 0 disables the cap.
func NewSQLiteRepository(db dbx.DBTX, maxBytes int) *SQLiteRepository {
	return &SQLiteRepository{db: db, maxBytes: maxBytes}
}

func (r *SQLiteRepository) Load(ctx context.Context) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, SlotKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load slot[%s]: %w", SlotKey, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Store(ctx context.Context, doc []byte) error {
	if r.maxBytes > 0 && len(doc) > r.maxBytes {
		return fmt.Errorf("slot[%s]: %d bytes over %d cap: %w",
			SlotKey, len(doc), r.maxBytes, common.ErrDocumentTooLarge)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO slots (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, SlotKey, doc)
	if err != nil {
		return fmt.Errorf("failed to store slot[%s]: %w", SlotKey, err)
	}
	return nil
}
