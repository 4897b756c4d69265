package config

import (
	"flag"
	"os"
	"time"

	"github.com/svetlov/medialog/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   path to the media store database file
//	-t string   scratch directory for materialized media
//	-i int      thumbnail backfill interval in seconds
//	-r int      index refresh interval in seconds (0 disables)
//	-l string   log level (debug, info, warn, error)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-t", "-i", "-r", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.StorePath, "d", cfg.StorePath, "path to the media store database file")
	fs.StringVar(&cfg.ScratchDir, "t", cfg.ScratchDir, "scratch directory for materialized media")
	backfillInterval := fs.Int("i", int(cfg.BackfillInterval.Seconds()), "thumbnail backfill interval (in seconds)")
	refreshInterval := fs.Int("r", int(cfg.RefreshInterval.Seconds()), "index refresh interval (in seconds, 0 disables)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.BackfillInterval = time.Duration(*backfillInterval) * time.Second
	cfg.RefreshInterval = time.Duration(*refreshInterval) * time.Second
}
