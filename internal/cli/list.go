package cli

import (
	"context"
	"fmt"
	"sort"
)

// List prints the timeline, newest entries first.
func (a *App) List(ctx context.Context) error {
	entries := a.journal.ReadAll(ctx)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt > entries[j].CreatedAt
	})

	if len(entries) == 0 {
		printlnFn("The journal is empty.")
		return nil
	}

	for _, e := range entries {
		thumb := " "
		if e.Thumb != "" {
			thumb = "*"
		}
		line := fmt.Sprintf("%s [%s]%s %s", e.CreatedAt, e.MediaType, thumb, e.ID)
		if note := e.ActiveNote(); note != "" {
			line += "  " + firstLine(note)
		}
		printlnFn(line)
	}
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

// Stats reports how full the index document is.
func (a *App) Stats(ctx context.Context) error {
	st, err := a.journal.Stats(ctx)
	if err != nil {
		a.log.Error(ctx, "cannot compute stats", "err", err)
		return err
	}

	printlnFn(fmt.Sprintf("entries: %d", st.Entries))
	if st.MaxBytes > 0 {
		printlnFn(fmt.Sprintf("index: %d / %d bytes", st.DocumentBytes, st.MaxBytes))
	} else {
		printlnFn(fmt.Sprintf("index: %d bytes", st.DocumentBytes))
	}
	return nil
}
