package blobs

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE blobs (
  key TEXT PRIMARY KEY,
  media_type TEXT NOT NULL DEFAULT '',
  payload BLOB NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func TestPut_InsertAndReplace(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, "e1", []byte{0x01, 0x02}, "image/jpeg"))

	got, err := r.Get(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "e1", got.Key)
	assert.Equal(t, "image/jpeg", got.MediaType)
	assert.Equal(t, []byte{0x01, 0x02}, got.Payload)

	// replace under the same key
	require.NoError(t, r.Put(ctx, "e1", []byte{0x03}, "video/mp4"))

	got, err = r.Get(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "video/mp4", got.MediaType)
	assert.Equal(t, []byte{0x03}, got.Payload)
}

func TestGet_MissingKeyIsAbsentNotError(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	got, err := r.Get(context.Background(), "missing-key")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDelete_RemovesAndTolerantOfMissing(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, "e1", []byte{0x01}, ""))
	require.NoError(t, r.Delete(ctx, "e1"))

	got, err := r.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// deleting again is a no-op
	require.NoError(t, r.Delete(ctx, "e1"))
}
