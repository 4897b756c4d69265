package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/svetlov/medialog/internal/common"
)

// Show resolves one entry's media into something a local player or viewer
// can open: a scratch file path for stored payloads, the data URI itself
// for inline ones. The handle is parked on the app's binding, so showing
// another entry releases the previous scratch file automatically.
func (a *App) Show(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter entry id to show", os.Stdout)
	if err != nil {
		a.log.Error(ctx, "input error", "err", err)
		return err
	}

	for _, e := range a.journal.ReadAll(ctx) {
		if e.ID != id {
			continue
		}

		h, err := a.binding.Set(ctx, e.Media)
		if err != nil {
			a.log.Error(ctx, "cannot resolve media", "entry_id", id, "err", err)
			return err
		}
		if h == nil {
			printlnFn("Media for this entry is unavailable.")
			return nil
		}

		printlnFn(fmt.Sprintf("%s [%s]", e.CreatedAt, e.MediaType))
		if note := e.ActiveNote(); note != "" {
			printlnFn(note)
		}
		if strings.HasPrefix(h.Src, "data:") {
			printlnFn(fmt.Sprintf("inline media, %d bytes encoded", len(h.Src)))
		} else {
			printlnFn("media file:", h.Src)
		}
		return nil
	}

	printlnFn("No entry with id", id)
	return common.ErrorNotFound
}
