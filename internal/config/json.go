package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/svetlov/medialog/internal/flagx"
	"github.com/svetlov/medialog/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "30s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	StorePath  string `json:"store_path"`
	ScratchDir string `json:"scratch_dir"`

	MaxIndexBytes int `json:"max_index_bytes"`
	InlineLimit   int `json:"inline_limit"`

	ThumbMaxDim  int            `json:"thumb_max_dim"`
	ThumbQuality int            `json:"thumb_quality"`
	FFprobePath  string         `json:"ffprobe_path"`
	FFmpegPath   string         `json:"ffmpeg_path"`
	ProbeTimeout timex.Duration `json:"probe_timeout"`
	FrameTimeout timex.Duration `json:"frame_timeout"`

	BackfillInterval timex.Duration `json:"backfill_interval"`
	RefreshInterval  timex.Duration `json:"refresh_interval"`

	LogLevel string `json:"log_level"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from the -c / -config flags via
// flagx.JsonConfigFlags(); when empty, no JSON is loaded. Only fields the
// file actually sets override the defaults. Read and unmarshal errors
// panic (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.StorePath != "" {
		cfg.StorePath = jc.StorePath
	}
	if jc.ScratchDir != "" {
		cfg.ScratchDir = jc.ScratchDir
	}
	if jc.MaxIndexBytes > 0 {
		cfg.MaxIndexBytes = jc.MaxIndexBytes
	}
	if jc.InlineLimit > 0 {
		cfg.InlineLimit = jc.InlineLimit
	}
	if jc.ThumbMaxDim > 0 {
		cfg.ThumbMaxDim = jc.ThumbMaxDim
	}
	if jc.ThumbQuality > 0 {
		cfg.ThumbQuality = jc.ThumbQuality
	}
	if jc.FFprobePath != "" {
		cfg.FFprobePath = jc.FFprobePath
	}
	if jc.FFmpegPath != "" {
		cfg.FFmpegPath = jc.FFmpegPath
	}
	if jc.ProbeTimeout.Duration > 0 {
		cfg.ProbeTimeout = time.Duration(jc.ProbeTimeout.Duration)
	}
	if jc.FrameTimeout.Duration > 0 {
		cfg.FrameTimeout = time.Duration(jc.FrameTimeout.Duration)
	}
	if jc.BackfillInterval.Duration > 0 {
		cfg.BackfillInterval = time.Duration(jc.BackfillInterval.Duration)
	}
	if jc.RefreshInterval.Duration > 0 {
		cfg.RefreshInterval = time.Duration(jc.RefreshInterval.Duration)
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
