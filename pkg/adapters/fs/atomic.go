package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// TempFilePrefix marks in-flight writes; watchers and key listings skip it.
const TempFilePrefix = "notegraph-tmp-"

// WriteFileAtomic replaces filename with data so that readers and watchers
// see either the previous blob or the new one, never a torn write.
// The temp file lives next to the target so the final rename stays on one
// filesystem. On failure the temp file is removed and filename is untouched.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(filename)

	tmp, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to stage %s: %w", filepath.Base(filename), err)
	}
	staged := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(staged)
		}
	}()

	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("failed to set mode on staged file: %w", err)
	}
	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write staged file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to flush staged file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close staged file: %w", err)
	}
	if err = os.Rename(staged, filename); err != nil {
		return fmt.Errorf("failed to publish %s: %w", filename, err)
	}
	syncDir(dir)
	return nil
}

// syncDir persists the rename where the platform can fsync a directory.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	defer d.Close()
	_ = d.Sync()
}
