package cli

import (
	"context"
	"os"
)

// Delete removes an entry from the timeline along with its stored payload.
func (a *App) Delete(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter entry id to delete", os.Stdout)
	if err != nil {
		a.log.Error(ctx, "input error", "err", err)
		return err
	}

	if err := a.journal.Delete(ctx, id); err != nil {
		a.log.Error(ctx, "cannot delete entry", "entry_id", id, "err", err)
		return err
	}

	printlnFn("Deleted", id)
	return nil
}

// Backfill runs one thumbnail backfill pass in the foreground.
func (a *App) Backfill(ctx context.Context) error {
	a.sweeper.Sweep(ctx)
	printlnFn("Backfill pass finished.")
	return nil
}
