package notify

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/svetlov/medialog/internal/logging"
)

// WatchStore publishes on b whenever the store file at path is modified by
// another process, so separate medialog instances observe each other's index
// mutations. The watch covers the store's directory because SQLite writes
// through sibling -wal/-shm files.
//
// The watcher goroutine stops when ctx is cancelled.
func WatchStore(ctx context.Context, path string, b *Broker, log logging.Logger) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return err
	}

	base := filepath.Base(abs)

	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if !strings.HasPrefix(filepath.Base(event.Name), base) {
					continue
				}
				log.Debug(ctx, "store file changed", "event", event.Op.String())
				b.Publish()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn(ctx, "error watching store file", "err", err)
			}
		}
	}()
	return nil
}

// PublishEvery is the coarse fallback for environments where file watching
// is unreliable: it publishes on b at the given interval until ctx is
// cancelled. An interval <= 0 disables it.
func PublishEvery(ctx context.Context, interval time.Duration, b *Broker) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.Publish()
		case <-ctx.Done():
			return
		}
	}
}
