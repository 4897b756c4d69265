package thumbs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/svetlov/medialog/internal/filex"
)

// runCommand is a test seam for subprocess execution.
var runCommand = func(cmd *exec.Cmd) error { return cmd.Run() }

// leadFrameSeek avoids black leading frames: seek to min(0.2s, duration/10)
// when the duration is known, otherwise take the first decodable frame.
const leadFrameSeek = 0.2

type probeInfo struct {
	Duration float64
	Width    int
	Height   int
}

// FromVideo derives a still-image preview from a video payload.
//
// The payload is materialized to a scratch file, probed for metadata, and a
// single frame at the seek point is decoded at the video's native
// resolution. When the payload carries no usable declared subtype it is
// re-wrapped under each candidate container from an ordered fallback list
// (most common first) until one probes successfully; undecorated bytes may
// fail to decode otherwise. Each scratch file is removed exactly once on
// every exit path.
func (g *Generator) FromVideo(ctx context.Context, payload []byte, declaredType string) string {
	if len(payload) == 0 {
		g.log.Warn(ctx, "empty video payload, no thumbnail")
		return ""
	}

	for _, ext := range candidateExts(declaredType, payload) {
		thumb, terminal := g.tryContainer(ctx, payload, ext)
		if terminal {
			return thumb
		}
		if ctx.Err() != nil {
			return ""
		}
	}

	g.log.Warn(ctx, "video not recognized under any candidate container, no thumbnail")
	return ""
}

// tryContainer runs the pipeline with the payload wrapped as ext. The
// second result is false only when the container itself was rejected and
// the next candidate should be tried.
func (g *Generator) tryContainer(ctx context.Context, payload []byte, ext string) (string, bool) {
	src, err := filex.WriteScratch(g.dir, "video-src-*"+ext, payload)
	if err != nil {
		g.log.Warn(ctx, "cannot materialize video payload", "err", err)
		return "", true
	}
	release := sync.OnceFunc(func() { _ = os.Remove(src) })
	defer release()

	info, err := g.probe(ctx, src)
	if err != nil {
		g.log.Debug(ctx, "probe rejected container", "ext", ext, "err", err)
		return "", false
	}

	// The container decoded; from here on any failure is terminal.
	if info.Width <= 0 || info.Height <= 0 {
		g.log.Warn(ctx, "video has no valid dimensions, no thumbnail",
			"width", info.Width, "height", info.Height)
		return "", true
	}

	frame, err := g.extractFrame(ctx, src, seekPoint(info.Duration))
	if err != nil {
		g.log.Warn(ctx, "frame extraction failed, no thumbnail", "err", err)
		return "", true
	}

	return jpegDataURI(frame), true
}

// probe loads the source's metadata only; bounded by ProbeTimeout.
func (g *Generator) probe(ctx context.Context, path string) (probeInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, g.probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := runCommand(cmd); err != nil {
		if ctx.Err() != nil {
			return probeInfo{}, fmt.Errorf("probe timed out: %w", ctx.Err())
		}
		return probeInfo{}, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return parseProbeOutput(stdout.Bytes())
}

func parseProbeOutput(b []byte) (probeInfo, error) {
	var out struct {
		Streams []struct {
			CodecType string `json:"codec_type"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return probeInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	var info probeInfo
	for _, s := range out.Streams {
		if s.CodecType == "video" {
			info.Width = s.Width
			info.Height = s.Height
			break
		}
	}
	// Streams with unknown duration report "N/A"; treat as zero.
	if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
		info.Duration = d
	}
	return info, nil
}

// seekPoint picks where to grab the preview frame.
func seekPoint(duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	if duration/10 < leadFrameSeek {
		return duration / 10
	}
	return leadFrameSeek
}

// extractFrame decodes one frame at seek seconds into a JPEG at the video's
// native resolution; bounded by FrameTimeout.
func (g *Generator) extractFrame(ctx context.Context, src string, seek float64) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.frameTimeout)
	defer cancel()

	out, err := os.CreateTemp(g.dir, "frame-*.jpg")
	if err != nil {
		return nil, fmt.Errorf("create frame file: %w", err)
	}
	outPath := out.Name()
	_ = out.Close()
	release := sync.OnceFunc(func() { _ = os.Remove(outPath) })
	defer release()

	args := []string{"-v", "error", "-y"}
	if seek > 0 {
		args = append(args, "-ss", strconv.FormatFloat(seek, 'f', 3, 64))
	}
	args = append(args,
		"-i", src,
		"-frames:v", "1",
		"-f", "image2",
		"-c:v", "mjpeg",
		"-q:v", "4",
		outPath,
	)

	cmd := exec.CommandContext(ctx, g.ffmpeg, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := runCommand(cmd); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("frame extraction timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	frame, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read frame file: %w", err)
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("ffmpeg produced an empty frame")
	}
	return frame, nil
}

// containerExts orders candidate containers for undecorated payloads, most
// common first.
var containerExts = []string{".mp4", ".webm", ".mov", ".mkv"}

func extForSubtype(mediaType string) string {
	mediaType, _, _ = strings.Cut(mediaType, ";")
	switch strings.TrimSpace(mediaType) {
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	case "video/x-matroska":
		return ".mkv"
	default:
		return ""
	}
}

// candidateExts resolves the container wrapping order for a payload: the
// declared subtype first when usable, then a content sniff, then the fixed
// fallback list.
func candidateExts(declaredType string, payload []byte) []string {
	var exts []string
	seen := make(map[string]struct{})

	add := func(ext string) {
		if ext == "" {
			return
		}
		if _, ok := seen[ext]; ok {
			return
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}

	add(extForSubtype(declaredType))
	add(extForSubtype(http.DetectContentType(payload)))
	for _, ext := range containerExts {
		add(ext)
	}
	return exts
}
