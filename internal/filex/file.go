// Package filex holds small filesystem helpers for scratch space used by
// display handles and the video pipeline.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir makes sure dir exists (creating parents as needed) and returns
// its absolute path. An empty dir falls back to a medialog subdirectory of
// the system temp dir.
func EnsureDir(dir string) (string, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "medialog")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}

// WriteScratch writes payload to a freshly created file in dir with the given
// name pattern (as accepted by os.CreateTemp) and returns its path. The
// caller owns the file and is responsible for removing it.
func WriteScratch(dir, pattern string, payload []byte) (string, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", fmt.Errorf("create scratch file: %w", err)
	}

	_, werr := f.Write(payload)
	cerr := f.Close()
	if werr != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write scratch file: %w", werr)
	}
	if cerr != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close scratch file: %w", cerr)
	}

	return f.Name(), nil
}
