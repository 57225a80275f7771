// Package filex contains the file primitives the realm stores rely on: an
// atomic whole-file replace that keeps the original permissions and owner,
// and a stat helper that exposes ownership.
package filex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Attrs is the security-relevant metadata of a file.
type Attrs struct {
	Exists bool
	Mode   fs.FileMode
	// HasOwner is false on platforms that do not expose uid/gid.
	HasOwner bool
	UID      int
	GID      int
}

// Stat returns the attributes of path. A missing file is not an error: the
// result has Exists set to false.
func Stat(path string) (Attrs, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Attrs{}, nil
	}
	if err != nil {
		return Attrs{}, fmt.Errorf("stat %s: %w", path, err)
	}
	a := Attrs{Exists: true, Mode: info.Mode().Perm()}
	a.UID, a.GID, a.HasOwner = owner(info)
	return a, nil
}

// WriteAtomic replaces path with data. The content goes to a temporary file
// in the same directory which is synced and renamed over path, so readers see
// either the old or the new file. When path already exists its permission
// bits and, where permitted, its owner are carried over; otherwise perm is
// used.
func WriteAtomic(path string, data []byte, perm fs.FileMode) (err error) {
	dir := filepath.Dir(path)

	prev, err := Stat(path)
	if err != nil {
		return err
	}
	if prev.Exists {
		perm = prev.Mode
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}
	if prev.Exists && prev.HasOwner {
		// only root can give a file away; a failure shows up later as owner drift
		_ = tmp.Chown(prev.UID, prev.GID)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmpPath, path, err)
	}

	if d, derr := os.Open(dir); derr == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
