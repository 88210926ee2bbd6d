package util

import (
	"io"
	"os"
	"path/filepath"
)

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// CreateOutput creates the output file path, including missing parent
// directories. "-" selects standard output, which is never closed.
func CreateOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}
