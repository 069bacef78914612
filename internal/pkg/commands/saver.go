package commands

import (
	"fmt"
	"os"
	"path/filepath"
)

// Saver stores a downloaded file and returns where it was written
type Saver interface {
	Save(name string, data []byte) (string, error)
}

// FileSaver writes files into Dir (default: current directory)
type FileSaver struct {
	Dir string
}

// Save writes data to Dir/name through a temp file and rename, so a
// half-written export never replaces a previous one
func (s FileSaver) Save(name string, data []byte) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(name))
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write temp export file: %w", err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to rename temp export file: %w", err)
	}
	return path, nil
}
