// Package resolve turns stored media references into transient display
// handles and owns those handles' lifecycles.
package resolve

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/svetlov/medialog/internal/filex"
	"github.com/svetlov/medialog/internal/logging"
	"github.com/svetlov/medialog/internal/models"
	"github.com/svetlov/medialog/internal/repositories/blobs"
)

// Handle is a value usable directly as a display source. Handles minted
// from stored references own a scratch file; Release removes it. Release is
// idempotent: exactly one removal happens no matter how many times or from
// which exit path it is called.
type Handle struct {
	// Src is the display source: a data URI for inline references, a file
	// path for stored ones.
	Src string

	path    string
	release sync.Once
}

// Release frees the handle's owned resource, if any. Using Src after
// Release is a caller bug.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.release.Do(func() {
		if h.path != "" {
			_ = os.Remove(h.path)
		}
	})
}

// Resolver maps media references onto display handles.
type Resolver struct {
	blobs blobs.Repository
	dir   string
	log   logging.Logger
}

// NewResolver materializes stored payloads into dir. The directory must
// exist (see filex.EnsureDir).
func NewResolver(repo blobs.Repository, dir string, log logging.Logger) *Resolver {
	if log == nil {
		log = logging.Nop()
	}
	return &Resolver{blobs: repo, dir: dir, log: log}
}

// Resolve produces a display handle for ref.
//
// Inline references come back as-is: the data URI is its own display source
// and there is nothing to release (Release is still safe to call). Stored
// references fetch the payload and write it to a scratch file owned by the
// returned handle. A reference whose blob is absent resolves to (nil, nil):
// "unavailable" is an expected state for the caller to render, not an error.
func (r *Resolver) Resolve(ctx context.Context, ref models.MediaRef) (*Handle, error) {
	if ref.Inline() {
		if ref.IsZero() {
			return nil, nil
		}
		return &Handle{Src: ref.DataURI()}, nil
	}

	b, err := r.blobs.Get(ctx, ref.Key())
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", ref.String(), err)
	}
	if b == nil {
		r.log.Warn(ctx, "media reference points at a missing blob", "key", ref.Key())
		return nil, nil
	}

	path, err := filex.WriteScratch(r.dir, "media-*"+extensionFor(b.MediaType), b.Payload)
	if err != nil {
		return nil, fmt.Errorf("materialize %s: %w", ref.String(), err)
	}
	return &Handle{Src: path, path: path}, nil
}

// extensionFor picks a filename extension so external viewers can make
// sense of the scratch file. Unknown types keep a neutral suffix.
func extensionFor(mediaType string) string {
	switch {
	case strings.HasPrefix(mediaType, "image/jpeg"):
		return ".jpg"
	case strings.HasPrefix(mediaType, "image/png"):
		return ".png"
	case strings.HasPrefix(mediaType, "image/webp"):
		return ".webp"
	case strings.HasPrefix(mediaType, "video/mp4"):
		return ".mp4"
	case strings.HasPrefix(mediaType, "video/webm"):
		return ".webm"
	case strings.HasPrefix(mediaType, "video/quicktime"):
		return ".mov"
	default:
		return ".bin"
	}
}
