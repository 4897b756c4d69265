package journal

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svetlov/medialog/internal/common"
	"github.com/svetlov/medialog/internal/logging"
	"github.com/svetlov/medialog/internal/models"
	"github.com/svetlov/medialog/internal/notify"
	"github.com/svetlov/medialog/internal/repositories/blobs"
	"github.com/svetlov/medialog/internal/repositories/index"
	"github.com/svetlov/medialog/internal/store"
)

// stubThumbs stands in for the photo thumbnailer during migration.
type stubThumbs struct{ thumb string }

func (s stubThumbs) FromPhoto(_ context.Context, _ []byte) string { return s.thumb }

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "medialog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newService(t *testing.T, db *sql.DB, maxBytes int) (Service, *notify.Broker) {
	t.Helper()
	broker := notify.NewBroker()
	svc := NewService(db, maxBytes, stubThumbs{thumb: "data:image/jpeg;base64,dGh1bWI="}, broker, logging.Nop())
	return svc, broker
}

func photoEntry(id string, payload []byte) models.Entry {
	return models.Entry{
		ID:        id,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		MediaType: models.MediaTypePhoto,
		Media:     models.NewInlineRef("image/jpeg", payload),
		Notes:     []models.NoteBlock{},
	}
}

func TestWriteAllThenReadAll_RoundTrip(t *testing.T) {
	db := setupDB(t)
	svc, _ := newService(t, db, 0)
	ctx := context.Background()

	e := photoEntry("e1", []byte("jpeg-bytes"))
	require.NoError(t, svc.WriteAll(ctx, []models.Entry{e}))

	got := svc.ReadAll(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, e, got[0], "all persisted fields survive the round-trip unchanged")
}

func TestReadAll_EmptyStoreYieldsEmptySequence(t *testing.T) {
	db := setupDB(t)
	svc, _ := newService(t, db, 0)

	got := svc.ReadAll(context.Background())
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestReadAll_MalformedDocumentYieldsEmptySequence(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	slot := index.NewSQLiteRepository(db, 0)
	require.NoError(t, slot.Store(ctx, []byte(`{not json]`)))

	svc, _ := newService(t, db, 0)
	assert.Empty(t, svc.ReadAll(ctx))
}

func TestAppend_RejectsDuplicateID(t *testing.T) {
	db := setupDB(t)
	svc, _ := newService(t, db, 0)
	ctx := context.Background()

	e := photoEntry("e1", []byte("x"))
	require.NoError(t, svc.Append(ctx, e))
	require.Error(t, svc.Append(ctx, e))

	assert.Len(t, svc.ReadAll(ctx), 1)
}

func TestWriteAll_OverflowMigratesInlineEntries(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	// A stored video must pass through migration untouched; the blob it
	// points at exists beforehand.
	blobRepo := blobs.NewSQLiteRepository(db)
	require.NoError(t, blobRepo.Put(ctx, "v1", []byte("video-bytes"), "video/mp4"))

	video := models.Entry{
		ID:        "v1",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		MediaType: models.MediaTypeVideo,
		Media:     models.NewStoredRef("v1"),
		Notes:     []models.NoteBlock{},
	}

	big := bytes.Repeat([]byte{0xab}, 600)
	entries := []models.Entry{photoEntry("p1", big), photoEntry("p2", big), video}

	// Small enough that the inline document overflows, large enough that
	// the migrated one fits.
	svc, _ := newService(t, db, 1024)
	require.NoError(t, svc.WriteAll(ctx, entries))

	got := svc.ReadAll(ctx)
	require.Len(t, got, 3)

	for _, id := range []string{"p1", "p2"} {
		e := findEntry(t, got, id)
		assert.True(t, e.Media.Stored(), "photo %s must be migrated to the blob store", id)
		assert.Equal(t, id, e.Media.Key())
		assert.NotEmpty(t, e.Thumb, "migrated photo %s gets a thumbnail before inline bytes are dropped", id)

		b, err := blobRepo.Get(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, b, "every stored reference must resolve to a blob")
		assert.Equal(t, big, b.Payload)
		assert.Equal(t, "image/jpeg", b.MediaType)
	}

	assert.Equal(t, video, findEntry(t, got, "v1"), "already-stored entries stay untouched")
}

func TestWriteAll_MigrationIsIdempotent(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	big := bytes.Repeat([]byte{0xcd}, 600)
	svc, _ := newService(t, db, 1024)

	require.NoError(t, svc.WriteAll(ctx, []models.Entry{photoEntry("p1", big), photoEntry("p2", big)}))
	first := svc.ReadAll(ctx)

	// Writing the migrated document back must not change any reference form.
	require.NoError(t, svc.WriteAll(ctx, first))
	second := svc.ReadAll(ctx)

	assert.Equal(t, first, second)
}

func TestWriteAll_SecondOverflowIsFatal(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	svc, _ := newService(t, db, 64)

	big := bytes.Repeat([]byte{0xef}, 600)
	err := svc.WriteAll(ctx, []models.Entry{photoEntry("p1", big)})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrIndexOverflow)

	assert.Empty(t, svc.ReadAll(ctx), "failed save must leave the previous (empty) document intact")
}

func TestReplace_UpdatesMatchingEntry(t *testing.T) {
	db := setupDB(t)
	svc, _ := newService(t, db, 0)
	ctx := context.Background()

	e := photoEntry("e1", []byte("x"))
	require.NoError(t, svc.Append(ctx, e))

	e.Thumb = "data:image/jpeg;base64,eA=="
	require.NoError(t, svc.Replace(ctx, e))

	got := svc.ReadAll(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, e.Thumb, got[0].Thumb)

	missing := photoEntry("ghost", []byte("x"))
	err := svc.Replace(ctx, missing)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSetThumbnail_WriteBack(t *testing.T) {
	db := setupDB(t)
	svc, _ := newService(t, db, 0)
	ctx := context.Background()

	require.NoError(t, svc.Append(ctx, photoEntry("e1", []byte("x"))))
	require.NoError(t, svc.SetThumbnail(ctx, "e1", "data:image/jpeg;base64,dA=="))

	got := svc.ReadAll(ctx)
	assert.Equal(t, "data:image/jpeg;base64,dA==", got[0].Thumb)

	assert.ErrorIs(t, svc.SetThumbnail(ctx, "ghost", "t"), common.ErrorNotFound)
}

func TestSetNote_CreatesAndUpdatesActiveBlock(t *testing.T) {
	db := setupDB(t)
	svc, _ := newService(t, db, 0)
	ctx := context.Background()

	require.NoError(t, svc.Append(ctx, photoEntry("e1", []byte("x"))))

	require.NoError(t, svc.SetNote(ctx, "e1", "first"))
	require.NoError(t, svc.SetNote(ctx, "e1", "second"))

	got := svc.ReadAll(ctx)
	require.Len(t, got[0].Notes, 1)
	assert.Equal(t, "second", got[0].ActiveNote())
}

func TestDelete_RemovesEntryAndBlob(t *testing.T) {
	db := setupDB(t)
	svc, _ := newService(t, db, 0)
	ctx := context.Background()

	blobRepo := blobs.NewSQLiteRepository(db)
	require.NoError(t, blobRepo.Put(ctx, "e1", []byte("payload"), "video/mp4"))

	e := models.Entry{
		ID:        "e1",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		MediaType: models.MediaTypeVideo,
		Media:     models.NewStoredRef("e1"),
		Notes:     []models.NoteBlock{},
	}
	require.NoError(t, svc.Append(ctx, e))

	require.NoError(t, svc.Delete(ctx, "e1"))

	assert.Empty(t, svc.ReadAll(ctx))
	b, err := blobRepo.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Nil(t, b)

	assert.ErrorIs(t, svc.Delete(ctx, "e1"), common.ErrorNotFound)
}

func TestMutations_NotifyAllSubscribers(t *testing.T) {
	db := setupDB(t)
	svc, broker := newService(t, db, 0)
	ctx := context.Background()

	require.NoError(t, svc.Append(ctx, photoEntry("e1", []byte("x"))))

	// Two independent views subscribe; a write-back initiated elsewhere
	// must reach both.
	ch1, cancel1 := broker.Subscribe()
	ch2, cancel2 := broker.Subscribe()
	defer cancel1()
	defer cancel2()

	require.NoError(t, svc.SetThumbnail(ctx, "e1", "data:image/jpeg;base64,dA=="))

	for i, ch := range []<-chan struct{}{ch1, ch2} {
		select {
		case <-ch:
		default:
			t.Fatalf("subscriber %d did not observe the index mutation", i+1)
		}
	}
}

func TestStats_ReportsSlotUsage(t *testing.T) {
	db := setupDB(t)
	svc, _ := newService(t, db, 4096)
	ctx := context.Background()

	require.NoError(t, svc.Append(ctx, photoEntry("e1", []byte("x"))))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 4096, stats.MaxBytes)
	assert.Greater(t, stats.DocumentBytes, 0)
}

func findEntry(t *testing.T, entries []models.Entry, id string) models.Entry {
	t.Helper()
	for _, e := range entries {
		if e.ID == id {
			return e
		}
	}
	t.Fatalf("entry %s not found", id)
	return models.Entry{}
}
