package core

import (
	"errors"
	"io/fs"
	"os"
)

// RemovePath deletes a single filesystem entry. Directories are removed
// recursively; a symlink is removed as a link and never followed. A missing
// path is not an error.
func RemovePath(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return os.RemoveAll(path)
	}
	return os.Remove(path)
}

// Exists reports whether path exists without following a final symlink.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
