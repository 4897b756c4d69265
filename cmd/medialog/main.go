package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/svetlov/medialog/internal/buildinfo"
	"github.com/svetlov/medialog/internal/cli"
	"github.com/svetlov/medialog/internal/config"
	"github.com/svetlov/medialog/internal/logging"
	"github.com/svetlov/medialog/internal/notify"
)

func newLogger(level string) logging.Logger {
	ll := &slog.LevelVar{}
	switch level {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		ll.Set(slog.LevelInfo)
	}

	handler := tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	return logging.NewSlogLogger(slog.New(handler))
}

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg := config.LoadConfig()
	logger := newLogger(cfg.LogLevel)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	// Another process writing the same store triggers a re-read here.
	go func() {
		if err := notify.WatchStore(ctx, app.StorePath(), app.Broker(), logger); err != nil {
			logger.Warn(ctx, "store watcher unavailable", "err", err)
		}
	}()

	// Video thumbnails are filled in behind the REPL.
	go func() {
		if err := app.Sweeper().Run(ctx); err != nil {
			logger.Warn(ctx, "thumbnail backfill unavailable", "err", err)
		}
	}()

	if cfg.RefreshInterval > 0 {
		go notify.PublishEvery(ctx, cfg.RefreshInterval, app.Broker())
	}

	app.Run(ctx)

}
