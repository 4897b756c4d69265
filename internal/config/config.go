package config

import "time"

// Config holds runtime settings for the medialog CLI.
//
// Size fields are in bytes. MaxIndexBytes caps the serialized timeline
// document; InlineLimit is the largest payload stored inline in the
// document rather than in the blob store. RefreshInterval of zero disables
// the periodic re-read of the index.
type Config struct {
	StorePath  string
	ScratchDir string

	MaxIndexBytes int
	InlineLimit   int

	ThumbMaxDim  int
	ThumbQuality int
	FFprobePath  string
	FFmpegPath   string
	ProbeTimeout time.Duration
	FrameTimeout time.Duration

	BackfillInterval time.Duration
	RefreshInterval  time.Duration

	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.StorePath = "medialog.db"
	c.ScratchDir = ""
	c.MaxIndexBytes = 256 << 10
	c.InlineLimit = 48 << 10
	c.ThumbMaxDim = 720
	c.ThumbQuality = 80
	c.FFprobePath = "ffprobe"
	c.FFmpegPath = "ffmpeg"
	c.ProbeTimeout = 400 * time.Millisecond
	c.FrameTimeout = 800 * time.Millisecond
	c.BackfillInterval = 30 * time.Second
	c.RefreshInterval = 0
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
