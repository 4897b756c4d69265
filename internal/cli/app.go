package cli

import (
	"bufio"
	"context"
	"database/sql"
	"os"

	"github.com/svetlov/medialog/internal/config"
	"github.com/svetlov/medialog/internal/filex"
	"github.com/svetlov/medialog/internal/journal"
	"github.com/svetlov/medialog/internal/logging"
	"github.com/svetlov/medialog/internal/notify"
	"github.com/svetlov/medialog/internal/repositories/blobs"
	"github.com/svetlov/medialog/internal/resolve"
	"github.com/svetlov/medialog/internal/store"
	"github.com/svetlov/medialog/internal/thumbs"
)

type App struct {
	config  *config.Config
	db      *sql.DB
	journal journal.Service
	blobs   blobs.Repository
	gen     *thumbs.Generator
	sweeper *thumbs.Sweeper
	binding *resolve.Binding
	broker  *notify.Broker
	log     logging.Logger
	reader  *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.Nop()
	}

	scratch, err := filex.EnsureDir(c.ScratchDir)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(ctx, c.StorePath)
	if err != nil {
		log.Error(ctx, "error initializing media store", "err", err)
		return nil, err
	}

	broker := notify.NewBroker()
	gen := thumbs.New(thumbs.Options{
		MaxDim:       c.ThumbMaxDim,
		Quality:      c.ThumbQuality,
		FFprobePath:  c.FFprobePath,
		FFmpegPath:   c.FFmpegPath,
		ProbeTimeout: c.ProbeTimeout,
		FrameTimeout: c.FrameTimeout,
		ScratchDir:   scratch,
	}, log)

	js := journal.NewService(db, c.MaxIndexBytes, gen, broker, log)
	br := blobs.NewSQLiteRepository(db)
	resolver := resolve.NewResolver(br, scratch, log)

	return &App{
		config:  c,
		db:      db,
		journal: js,
		blobs:   br,
		gen:     gen,
		sweeper: thumbs.NewSweeper(js, br, gen, broker, c.BackfillInterval, log),
		binding: resolve.NewBinding(resolver),
		broker:  broker,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

// Broker exposes the change notification hub so the process entry point can
// attach the store watcher and the periodic refresher.
func (a *App) Broker() *notify.Broker { return a.broker }

// Sweeper exposes the background thumbnail backfill loop.
func (a *App) Sweeper() *thumbs.Sweeper { return a.sweeper }

// StorePath returns the database file the app was opened on.
func (a *App) StorePath() string { return a.config.StorePath }

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() {
	a.binding.Clear()
	if a.db != nil {
		_ = a.db.Close()
	}
}
