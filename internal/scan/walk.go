package scan

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// DirSize sums the sizes of regular files under root without following
// symlinks. Unreadable entries below root are skipped and recorded as
// warnings; an error is returned only when root itself cannot be read.
// A regular file root yields its own size.
func (s *Scanner) DirSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// Permission denied or vanished entry: skip, don't fail.
			s.addWarning("cannot read " + path + ": " + err.Error())
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			s.addWarning("cannot stat " + path + ": " + err.Error())
			return nil
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// TopLevelCount returns the number of direct children of path, 1 for a
// file, and 0 when path is missing or unreadable.
func (s *Scanner) TopLevelCount(path string) int {
	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.addWarning("cannot stat " + path + ": " + err.Error())
		}
		return 0
	}
	if !info.IsDir() {
		return 1
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		s.addWarning("cannot read " + path + ": " + err.Error())
		return 0
	}
	return len(entries)
}
