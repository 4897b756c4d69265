// Package cli provides the interactive medialog command-line client.
//
// It wires configuration, the local media store, the thumbnail pipeline,
// and an interactive REPL over the timeline.
//
// Key features:
//   - Add photo and video entries from local files
//   - List / Show entries, with media materialized on demand
//   - Attach notes, delete entries, inspect index usage
//   - Trigger the thumbnail backfill by hand
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
