package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Add(ctx context.Context, path string) error
	List(ctx context.Context) error
	Show(ctx context.Context) error
	Note(ctx context.Context) error
	Delete(ctx context.Context) error
	Stats(ctx context.Context) error
	Backfill(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the medialog CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands
//
//	help           show available commands
//	add <path>     record a photo or video from a local file
//	list | l       list timeline entries, newest first
//	show           materialize one entry's media (interactive id prompt)
//	note           attach or edit an entry's note (interactive)
//	delete         remove an entry (interactive id prompt)
//	stats          report entry count and index size
//	thumbs         run one thumbnail backfill pass now
//	exit | quit    leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("ml> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			printlnFn("Available commands: add <path>, (l)ist, show, note, delete, stats, thumbs, exit")

		case "add":
			if len(args) == 0 {
				printlnFn("Usage: add <path>")
				continue
			}
			_ = a.Add(ctx, args[0])

		case "l", "list":
			_ = a.List(ctx)

		case "show":
			_ = a.Show(ctx)

		case "note":
			_ = a.Note(ctx)

		case "delete":
			_ = a.Delete(ctx)

		case "stats":
			_ = a.Stats(ctx)

		case "thumbs":
			_ = a.Backfill(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
