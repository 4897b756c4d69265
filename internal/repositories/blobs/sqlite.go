package blobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/svetlov/medialog/internal/dbx"
	"github.com/svetlov/medialog/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Put(ctx context.Context, key string, payload []byte, mediaType string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO blobs (key, media_type, payload) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET media_type = excluded.media_type, payload = excluded.payload
	`, key, mediaType, payload)
	if err != nil {
		return fmt.Errorf("failed to put blob[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) (*models.Blob, error) {
	b := &models.Blob{Key: key}
	err := r.db.QueryRowContext(ctx,
		`SELECT media_type, payload FROM blobs WHERE key = ?`, key).
		Scan(&b.MediaType, &b.Payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blob[%s]: %w", key, err)
	}
	return b, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete blob[%s]: %w", key, err)
	}
	return nil
}
