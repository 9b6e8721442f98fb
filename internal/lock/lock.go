// Package lock provides the per-record advisory lock that keeps two afj
// processes from modifying or reverting the same tracked file at once.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adamlabadorf/afj/internal/locator"
)

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("another afj process is working on this file")

// Lock is a held advisory lock. Release it with Unlock.
type Lock struct {
	path string
	file *os.File
}

// PathFor returns the lock file location for a record.
func PathFor(root, name string) string {
	return locator.StatePath(root, "locks", name+".lock")
}

// Acquire takes the lock for the record name under root without blocking.
// Returns ErrLocked if it is already held.
func Acquire(root, name string) (*Lock, error) {
	path := PathFor(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := tryLock(f); err != nil {
		_ = f.Close()
		if errors.Is(err, ErrLocked) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, name)
		}
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}

	return &Lock{path: path, file: f}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Unlock releases the lock. The lock file itself is left in place.
func (l *Lock) Unlock() error {
	if l == nil || l.file == nil {
		return nil
	}

	err := unlock(l.file)
	if cerr := l.file.Close(); err == nil {
		err = cerr
	}
	l.file = nil
	return err
}
