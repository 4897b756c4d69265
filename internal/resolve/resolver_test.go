package resolve

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svetlov/medialog/internal/logging"
	"github.com/svetlov/medialog/internal/models"
	"github.com/svetlov/medialog/internal/repositories/blobs"

	_ "modernc.org/sqlite"
)

func setupResolver(t *testing.T) (*Resolver, blobs.Repository) {
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

	repo := blobs.NewSQLiteRepository(db)
	return NewResolver(repo, t.TempDir(), logging.Nop()), repo
}

func TestResolve_InlineRefPassesThrough(t *testing.T) {
	r, _ := setupResolver(t)

	ref := models.NewInlineRef("image/jpeg", []byte("jpeg"))
	h, err := r.Resolve(context.Background(), ref)
	require.NoError(t, err)
	require.NotNil(t, h)

	assert.Equal(t, ref.DataURI(), h.Src)

	// No owned resource; releasing must still be safe.
	h.Release()
	h.Release()
}

func TestResolve_StoredRefMaterializesScratchFile(t *testing.T) {
	r, repo := setupResolver(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "e1", []byte("video-bytes"), "video/mp4"))

	h, err := r.Resolve(ctx, models.NewStoredRef("e1"))
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.True(t, strings.HasSuffix(h.Src, ".mp4"))

	data, err := os.ReadFile(h.Src)
	require.NoError(t, err)
	assert.Equal(t, []byte("video-bytes"), data)

	h.Release()
	_, err = os.Stat(h.Src)
	assert.True(t, os.IsNotExist(err), "release must remove the scratch file")

	// Second release is a no-op, not a double free.
	h.Release()
}

func TestResolve_MissingBlobIsUnavailableNotError(t *testing.T) {
	r, _ := setupResolver(t)

	h, err := r.Resolve(context.Background(), models.NewStoredRef("missing-key"))
	require.NoError(t, err)
	assert.Nil(t, h, "a dangling reference resolves to unavailable")
}

func TestBinding_SequentialSetsReleaseEveryHandle(t *testing.T) {
	r, repo := setupResolver(t)
	ctx := context.Background()

	const n = 5
	var paths []string

	b := NewBinding(r)
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("e%d", i)
		require.NoError(t, repo.Put(ctx, key, []byte("payload"), "image/jpeg"))

		h, err := b.Set(ctx, models.NewStoredRef(key))
		require.NoError(t, err)
		require.NotNil(t, h)
		paths = append(paths, h.Src)
	}
	b.Clear()

	// Exactly N handles were minted; after N-1 supersessions and the final
	// clear, every one of them must be gone.
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err), "handle %s leaked", p)
	}
	assert.Nil(t, b.Current())
}

func TestBinding_SupersededResolutionIsDiscarded(t *testing.T) {
	r, repo := setupResolver(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "old", []byte("old"), "image/jpeg"))
	require.NoError(t, repo.Put(ctx, "new", []byte("new"), "image/jpeg"))

	b := NewBinding(r)

	// Freeze the first resolution until the second one has gone through.
	firstStarted := make(chan struct{})
	unblock := make(chan struct{})
	var once sync.Once

	slow := &slowRepo{Repository: repo, onGet: func(key string) {
		if key == "old" {
			once.Do(func() { close(firstStarted) })
			<-unblock
		}
	}}
	b.r = NewResolver(slow, t.TempDir(), logging.Nop())

	done := make(chan *Handle, 1)
	go func() {
		h, _ := b.Set(ctx, models.NewStoredRef("old"))
		done <- h
	}()

	<-firstStarted
	current, err := b.Set(ctx, models.NewStoredRef("new"))
	require.NoError(t, err)
	require.NotNil(t, current)

	close(unblock)
	stale := <-done

	assert.Nil(t, stale, "a superseded resolution must not be published")
	assert.Equal(t, current, b.Current(), "the newer handle stays current")

	_, err = os.Stat(current.Src)
	assert.NoError(t, err, "current handle is still alive")
}

// slowRepo delays Get so tests can interleave two resolutions.
type slowRepo struct {
	blobs.Repository
	onGet func(key string)
}

func (s *slowRepo) Get(ctx context.Context, key string) (*models.Blob, error) {
	if s.onGet != nil {
		s.onGet(key)
	}
	return s.Repository.Get(ctx, key)
}
