package cli

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/svetlov/medialog/internal/common"
	"github.com/svetlov/medialog/internal/models"
)

// Add records the photo or video at path as a new timeline entry.
//
// Payloads at or below the configured inline limit are embedded in the
// index document itself; larger ones go to the blob store and the entry
// keeps only a reference. Photos get their thumbnail immediately; video
// thumbnails are filled in by the background backfill.
func (a *App) Add(ctx context.Context, path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		a.log.Error(ctx, "cannot read media file", "path", path, "err", err)
		return err
	}

	mt, mimeType, err := classifyMedia(path, payload)
	if err != nil {
		a.log.Error(ctx, "unsupported media file", "path", path, "err", err)
		return err
	}

	var ref models.MediaRef
	if len(payload) <= a.config.InlineLimit {
		ref = models.NewInlineRef(mimeType, payload)
	} else {
		key := uuid.NewString()
		if err := a.blobs.Put(ctx, key, payload, mimeType); err != nil {
			a.log.Error(ctx, "cannot store media payload", "err", err)
			return err
		}
		ref = models.NewStoredRef(key)
	}

	e := models.NewEntry(mt, ref)
	if mt == models.MediaTypePhoto {
		e.Thumb = a.gen.FromPhoto(ctx, payload)
	}

	if err := a.journal.Append(ctx, e); err != nil {
		a.log.Error(ctx, "cannot append entry", "err", err)
		return err
	}

	printlnFn("Added", string(mt), e.ID)
	return nil
}

// classifyMedia decides photo vs video from the payload's sniffed content
// type, falling back to the file extension when sniffing is inconclusive.
func classifyMedia(path string, payload []byte) (models.MediaType, string, error) {
	mimeType := http.DetectContentType(payload)
	if mimeType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
			mimeType = byExt
		}
	}

	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return models.MediaTypePhoto, mimeType, nil
	case strings.HasPrefix(mimeType, "video/"):
		return models.MediaTypeVideo, mimeType, nil
	default:
		return "", "", fmt.Errorf("%w: %s", common.ErrUnsupportedMedia, mimeType)
	}
}
