package orchestrator

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// publish replaces path with content. The data is written to a temporary
// file in the same directory and renamed over path, so readers see either
// the old or the new file. The existing mode is kept; new files get 0644.
// The result is read back and compared before publish returns.
func publish(fs afero.Fs, path string, content []byte) error {
	mode := os.FileMode(0644)
	if info, err := fs.Stat(path); err == nil {
		mode = info.Mode().Perm()
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %v (%s)", ErrPublish, err, publishHint)
	}

	dir, base := filepath.Split(path)
	tmp, err := afero.TempFile(fs, dir, "."+base+".afj-*")
	if err != nil {
		return fmt.Errorf("%w: %v (%s)", ErrPublish, err, publishHint)
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = fs.Remove(tmpName)
		return fmt.Errorf("%w: %v (%s)", ErrPublish, cause, publishHint)
	}

	if _, err := tmp.Write(content); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		return cleanup(err)
	}
	if err := fs.Chmod(tmpName, mode); err != nil {
		return cleanup(err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		return cleanup(err)
	}

	got, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("%w: read back: %v (%s)", ErrPublish, err, publishHint)
	}
	if !bytes.Equal(got, content) {
		return fmt.Errorf("%w: content mismatch after write (%s)", ErrPublish, publishHint)
	}
	return nil
}
