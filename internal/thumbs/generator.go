// Package thumbs derives inline still-image previews from photo and video
// media. Derivation failure is a normal, representable outcome: every public
// path resolves to "no thumbnail" (an empty string) instead of surfacing an
// error, and every stage of the video pipeline is timeout-bounded so a
// source that never decodes cannot hang a caller.
package thumbs

import (
	"context"
	"time"

	"github.com/svetlov/medialog/internal/logging"
	"github.com/svetlov/medialog/internal/models"
)

const (
	// DefaultMaxDim caps both thumbnail dimensions, preserving aspect ratio.
	DefaultMaxDim = 720
	// DefaultQuality is the JPEG quality for re-encoded previews.
	DefaultQuality = 80

	defaultProbeTimeout = 400 * time.Millisecond
	defaultFrameTimeout = 800 * time.Millisecond
)

// Options configures a Generator. Zero fields fall back to defaults.
type Options struct {
	MaxDim  int
	Quality int

	FFprobePath string
	FFmpegPath  string

	// ProbeTimeout bounds the metadata-only load of a video source;
	// FrameTimeout bounds seeking and decoding the preview frame.
	ProbeTimeout time.Duration
	FrameTimeout time.Duration

	// ScratchDir receives the transient files fed to ffmpeg; it must exist.
	ScratchDir string
}

type Generator struct {
	maxDim  int
	quality int

	ffprobe string
	ffmpeg  string

	probeTimeout time.Duration
	frameTimeout time.Duration

	dir string
	log logging.Logger
}

func New(opts Options, log logging.Logger) *Generator {
	if log == nil {
		log = logging.Nop()
	}
	g := &Generator{
		maxDim:       opts.MaxDim,
		quality:      opts.Quality,
		ffprobe:      opts.FFprobePath,
		ffmpeg:       opts.FFmpegPath,
		probeTimeout: opts.ProbeTimeout,
		frameTimeout: opts.FrameTimeout,
		dir:          opts.ScratchDir,
		log:          log,
	}
	if g.maxDim <= 0 {
		g.maxDim = DefaultMaxDim
	}
	if g.quality <= 0 {
		g.quality = DefaultQuality
	}
	if g.ffprobe == "" {
		g.ffprobe = "ffprobe"
	}
	if g.ffmpeg == "" {
		g.ffmpeg = "ffmpeg"
	}
	if g.probeTimeout <= 0 {
		g.probeTimeout = defaultProbeTimeout
	}
	if g.frameTimeout <= 0 {
		g.frameTimeout = defaultFrameTimeout
	}
	return g
}

// Generate derives an inline thumbnail for the given media payload.
// declaredType is the payload's media type when known, "" otherwise. The
// result is a JPEG data URI, or "" when no thumbnail could be produced.
func (g *Generator) Generate(ctx context.Context, mt models.MediaType, payload []byte, declaredType string) string {
	switch mt {
	case models.MediaTypePhoto:
		return g.FromPhoto(ctx, payload)
	case models.MediaTypeVideo:
		return g.FromVideo(ctx, payload, declaredType)
	default:
		g.log.Warn(ctx, "no thumbnail pipeline for media type", "media_type", string(mt))
		return ""
	}
}
