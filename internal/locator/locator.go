// Package locator finds the metadata root that holds per-file histories.
//
// The metadata root is a directory named .afj. For any path, the active root
// is the nearest .afj found by walking upward from the starting directory;
// when none exists anywhere up to the filesystem root, a fresh one is
// created in the working directory.
package locator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// DirName is the name of the metadata root directory.
const DirName = ".afj"

// StateDirName is the directory inside a metadata root that holds the index
// and lock files. No tracked file may use this base name.
const StateDirName = ".afj-state"

// StatePath joins elem onto the state directory of root.
func StatePath(root string, elem ...string) string {
	return filepath.Join(append([]string{root, StateDirName}, elem...)...)
}

var (
	// ErrNotFound is returned by Find when no metadata root exists on the
	// path from the start directory to the filesystem root.
	ErrNotFound = errors.New("no .afj directory found")

	// ErrCreateRoot is returned when the fallback metadata root cannot be
	// created in the working directory.
	ErrCreateRoot = errors.New("cannot create .afj directory")
)

// Locator resolves metadata roots.
type Locator struct {
	// Fs is the filesystem searched and written; defaults to the OS.
	Fs afero.Fs

	// WorkDir is where a fallback root is created; defaults to os.Getwd().
	WorkDir string

	Logger *zap.Logger
}

// New returns a Locator over the OS filesystem rooted at the process
// working directory.
func New(logger *zap.Logger) *Locator {
	return &Locator{Fs: afero.NewOsFs(), Logger: logger}
}

// Locate returns the metadata root for start, creating <WorkDir>/.afj when
// no root exists above start. Repeated calls return the same root; an
// existing root is never written to.
func (l *Locator) Locate(start string) (string, error) {
	root, err := l.Find(start)
	if err == nil {
		return root, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	wd, err := l.workDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCreateRoot, err)
	}

	root = filepath.Join(wd, DirName)
	if err := l.fs().MkdirAll(root, 0755); err != nil {
		return "", fmt.Errorf("%w at %s: %w", ErrCreateRoot, root, err)
	}

	l.logger().Info("created metadata root", zap.String("root", root))
	return root, nil
}

// Find walks upward from start and returns the first <dir>/.afj directory.
// It never creates anything and returns ErrNotFound when the walk reaches
// the filesystem root without a hit.
func (l *Locator) Find(start string) (string, error) {
	dir, err := l.resolve(start)
	if err != nil {
		return "", err
	}

	fs := l.fs()
	for {
		candidate := filepath.Join(dir, DirName)
		ok, err := afero.DirExists(fs, candidate)
		if err != nil && !errors.Is(err, os.ErrPermission) {
			return "", fmt.Errorf("failed to inspect %s: %w", candidate, err)
		}
		if ok {
			l.logger().Debug("found metadata root", zap.String("root", candidate))
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// resolve makes start absolute and, on the OS filesystem, follows symlinks.
func (l *Locator) resolve(start string) (string, error) {
	if start == "" {
		start = "."
	}

	if !filepath.IsAbs(start) {
		wd, err := l.workDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s: %w", start, err)
		}
		start = filepath.Join(wd, start)
	}
	start = filepath.Clean(start)

	if _, onDisk := l.fs().(*afero.OsFs); onDisk {
		if resolved, err := filepath.EvalSymlinks(start); err == nil {
			start = resolved
		}
	}
	return start, nil
}

func (l *Locator) workDir() (string, error) {
	if l.WorkDir != "" {
		return filepath.Abs(l.WorkDir)
	}
	return os.Getwd()
}

func (l *Locator) fs() afero.Fs {
	if l.Fs == nil {
		return afero.NewOsFs()
	}
	return l.Fs
}

func (l *Locator) logger() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}
