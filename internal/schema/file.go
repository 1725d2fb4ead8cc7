package schema

import (
	"fmt"
	"io"
	"os"
)

// readFile loads the whole file at path. The handle is released on every
// return path.
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrFileOpen, path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrFileRead, path, err)
	}
	return data, nil
}
