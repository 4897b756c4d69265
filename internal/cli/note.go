package cli

import (
	"context"
	"os"
)

// Note attaches a text note to an entry, or rewrites the existing one.
func (a *App) Note(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter entry id", os.Stdout)
	if err != nil {
		a.log.Error(ctx, "input error", "err", err)
		return err
	}

	text, err := GetMultiline(a.reader, "Enter note text", os.Stdout)
	if err != nil {
		a.log.Error(ctx, "input error", "err", err)
		return err
	}

	if err := a.journal.SetNote(ctx, id, text); err != nil {
		a.log.Error(ctx, "cannot set note", "entry_id", id, "err", err)
		return err
	}

	printlnFn("Note saved.")
	return nil
}
