package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
)

func (a *App) getStatus() string {
	n := len(a.journal.ReadAll(context.Background()))
	return fmt.Sprintf("(%s, %d entries)", filepath.Base(a.config.StorePath), n)
}

// Root runs the interactive loop until the user exits or stdin closes.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to medialog (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
