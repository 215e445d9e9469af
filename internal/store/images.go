package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// writeImage stores an event's image blob under dir and returns its path.
// A previous image for the same event is replaced.
func writeImage(dir, id string, data []byte, ext string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("images dir is not configured")
	}
	if len(data) == 0 {
		return "", errors.New("empty image")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		ext = "jpg"
	}
	path := filepath.Join(dir, fmt.Sprintf("%s.%s", id, ext))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return path, nil
}

// removeImage deletes an event's image blob; a missing file is not an error.
func removeImage(path string) error {
	if path == "" {
		return nil
	}
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
