package thumbs

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/svetlov/medialog/internal/common"
	"github.com/svetlov/medialog/internal/journal"
	"github.com/svetlov/medialog/internal/logging"
	"github.com/svetlov/medialog/internal/models"
	"github.com/svetlov/medialog/internal/notify"
	"github.com/svetlov/medialog/internal/repositories/blobs"
)

// FrameGenerator is the thumbnail pipeline the sweeper drives. *Generator
// satisfies it.
type FrameGenerator interface {
	Generate(ctx context.Context, mt models.MediaType, payload []byte, declaredType string) string
}

// Sweeper fills in missing video thumbnails in the background and persists
// them through the journal, independent of whichever view created the
// entry. Each write-back fires the change notification so every live view
// re-reads the index.
type Sweeper struct {
	journal  journal.Service
	blobs    blobs.Repository
	gen      FrameGenerator
	broker   *notify.Broker
	interval time.Duration
	log      logging.Logger
}

func NewSweeper(j journal.Service, b blobs.Repository, gen FrameGenerator, broker *notify.Broker, interval time.Duration, log logging.Logger) *Sweeper {
	if log == nil {
		log = logging.Nop()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Sweeper{journal: j, blobs: b, gen: gen, broker: broker, interval: interval, log: log}
}

// Run sweeps on a fixed schedule and additionally whenever the index
// changes, until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() { s.Sweep(ctx) }),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return err
	}

	ch, cancel := s.broker.Subscribe()
	defer cancel()

	scheduler.Start()
	defer func() { _ = scheduler.Shutdown() }()

	s.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ch:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one backfill pass. Cancellation is cooperative: the context is
// checked between entries, and a derived thumbnail is discarded when its
// entry vanished or acquired a thumbnail while the derivation ran.
func (s *Sweeper) Sweep(ctx context.Context) {
	for _, e := range s.journal.ReadAll(ctx) {
		if ctx.Err() != nil {
			return
		}
		if e.MediaType != models.MediaTypeVideo || e.Thumb != "" {
			continue
		}

		payload, declared, ok := s.payload(ctx, e)
		if !ok {
			continue
		}

		thumb := s.gen.Generate(ctx, e.MediaType, payload, declared)
		if thumb == "" {
			// "no thumbnail" is a valid terminal state; the next sweep may
			// retry but nothing is recorded.
			continue
		}

		if stale(s.journal.ReadAll(ctx), e.ID) {
			s.log.Debug(ctx, "discarding thumbnail for superseded entry", "entry_id", e.ID)
			continue
		}

		if err := s.journal.SetThumbnail(ctx, e.ID, thumb); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				s.log.Debug(ctx, "entry removed during derivation, discarding thumbnail", "entry_id", e.ID)
				continue
			}
			s.log.Warn(ctx, "thumbnail write-back failed", "entry_id", e.ID, "err", err)
		}
	}
}

func (s *Sweeper) payload(ctx context.Context, e models.Entry) ([]byte, string, bool) {
	if e.Media.Inline() {
		mime, payload, err := e.Media.DecodeInline()
		if err != nil {
			s.log.Warn(ctx, "inline media does not decode, skipping", "entry_id", e.ID, "err", err)
			return nil, "", false
		}
		return payload, mime, true
	}

	b, err := s.blobs.Get(ctx, e.Media.Key())
	if err != nil {
		s.log.Warn(ctx, "blob fetch failed, skipping", "entry_id", e.ID, "err", err)
		return nil, "", false
	}
	if b == nil {
		s.log.Debug(ctx, "entry references a missing blob, skipping", "entry_id", e.ID)
		return nil, "", false
	}
	return b.Payload, b.MediaType, true
}

// stale reports whether the entry no longer needs (or can take) a
// thumbnail write-back.
func stale(entries []models.Entry, id string) bool {
	for _, e := range entries {
		if e.ID == id {
			return e.Thumb != ""
		}
	}
	return true
}
