// Package fsutil holds the file-writing primitives shared by the config and
// session stores.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TempSuffix marks in-flight files written by AtomicWriteFile.
const TempSuffix = ".tmp"

// MkdirScoped creates dir and any missing parents. The returned rollback
// removes exactly the directories this call created; it is a no-op when dir
// already existed. On error nothing created by the call is left behind.
func MkdirScoped(dir string, perm os.FileMode) (rollback func(), err error) {
	noop := func() {}

	// Find the outermost ancestor that does not exist yet.
	first := ""
	for d := filepath.Clean(dir); ; {
		_, statErr := os.Stat(d)
		if statErr == nil {
			break
		}
		if !errors.Is(statErr, fs.ErrNotExist) {
			return noop, statErr
		}
		first = d
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}
	if first == "" {
		return noop, nil
	}

	if err := os.MkdirAll(dir, perm); err != nil {
		_ = os.RemoveAll(first)
		return noop, err
	}
	return func() { _ = os.RemoveAll(first) }, nil
}

// AtomicWriteFile writes data to a temp file beside path and renames it into
// place, so readers see either the old content or the new, never a mix.
// Parent directories are created as needed and removed again if the temp file
// cannot be created.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	rollback, err := MkdirScoped(dir, 0o750)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*"+TempSuffix)
	if err != nil {
		rollback()
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmp := f.Name()

	success := false
	defer func() {
		if !success {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp, err)
	}
	if err := os.Chmod(tmp, perm); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}

	success = true
	return nil
}

// IsTemp reports whether name looks like an AtomicWriteFile temp file.
func IsTemp(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, TempSuffix)
}
