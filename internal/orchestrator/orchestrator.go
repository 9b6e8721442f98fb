// Package orchestrator runs the afj operations on a single file.
//
// Modify sends the file to the generation backend, records the reply as a
// new version in the file's history, and publishes it over the live file.
// Revert restores the previous version and publishes that instead. The
// history is always written first; the live file follows it.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/adamlabadorf/afj/internal/backend"
	"github.com/adamlabadorf/afj/internal/history"
	"github.com/adamlabadorf/afj/internal/index"
	"github.com/adamlabadorf/afj/internal/locator"
	"github.com/adamlabadorf/afj/internal/lock"
	"github.com/adamlabadorf/afj/internal/vcs"
)

// IndexOpener opens the tracked-file index of a metadata root.
type IndexOpener func(ctx context.Context, root string) (*index.Index, error)

// Orchestrator wires the locator, history store, backend and index.
type Orchestrator struct {
	Locator *locator.Locator
	Store   *history.Store
	Backend backend.Generator

	// Index opens the per-root index; defaults to index.OpenRoot
	Index IndexOpener

	// AllowNameCollisions lets a second source path take over a base name
	AllowNameCollisions bool

	Fs     afero.Fs
	Logger *zap.Logger
	Clock  func() time.Time
}

// Result describes a completed Modify or Revert.
type Result struct {
	// Path is the absolute path of the live file
	Path string

	// Root is the metadata root holding the record
	Root string

	// Name is the record name (the file's base name)
	Name string

	// Commit is the id of the version now at head
	Commit string

	// Backend is the generator that produced the content; empty for Revert
	Backend string

	// Created reports whether this call started the file's history
	Created bool

	Content []byte
	Time    time.Time
}

// Modify asks the backend to rewrite filePath according to instruction,
// records the reply as the newest version and publishes it.
func (o *Orchestrator) Modify(ctx context.Context, filePath, instruction string) (*Result, error) {
	abs, err := resolveInput(filePath)
	if err != nil {
		return nil, err
	}

	content, err := afero.ReadFile(o.fs(), abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, filePath)
		}
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	root, err := o.Locator.Locate(filepath.Dir(abs))
	if err != nil {
		return nil, err
	}
	name := filepath.Base(abs)
	if err := history.ValidateName(name); err != nil {
		return nil, err
	}

	l, err := lock.Acquire(root, name)
	if err != nil {
		return nil, err
	}
	defer o.unlock(l)

	idx, err := o.openIndex(ctx, root)
	if err != nil {
		return nil, err
	}
	defer idx.Close()

	rec, err := o.Store.EnsureRepository(ctx, root, name)
	if err != nil {
		return nil, err
	}

	if _, err := idx.Claim(ctx, name, abs, rec.Repo.Name().String(), o.AllowNameCollisions); err != nil {
		return nil, err
	}

	o.logger().Info("modifying file",
		zap.String("file", abs),
		zap.String("backend", o.Backend.Name()))

	output, err := o.Backend.Generate(ctx, backend.BuildPrompt(instruction, string(content)))
	if err != nil {
		if !errors.Is(err, backend.ErrBackend) {
			err = backend.NewError(o.Backend.Name(), "generate", err)
		}
		return nil, err
	}

	commit, err := o.Store.Commit(ctx, root, name, []byte(output), instruction)
	if err != nil {
		return nil, err
	}

	if err := idx.RecordVersion(ctx, name, commit); err != nil {
		o.logger().Warn("failed to update index", zap.String("file", name), zap.Error(err))
	}

	if err := publish(o.fs(), abs, []byte(output)); err != nil {
		return nil, err
	}

	o.logger().Info("file updated",
		zap.String("file", abs),
		zap.String("commit", vcs.ShortID(commit)))

	return &Result{
		Path:    abs,
		Root:    root,
		Name:    name,
		Commit:  commit,
		Backend: o.Backend.Name(),
		Created: rec.Created,
		Content: []byte(output),
		Time:    o.now(),
	}, nil
}

// Revert restores the version before the newest one and publishes it.
// It never creates a metadata root or a record.
func (o *Orchestrator) Revert(ctx context.Context, filePath string) (*Result, error) {
	abs, root, name, err := o.find(filePath)
	if err != nil {
		return nil, err
	}

	l, err := lock.Acquire(root, name)
	if err != nil {
		return nil, err
	}
	defer o.unlock(l)

	content, err := o.Store.RevertToPrevious(ctx, root, name)
	if err != nil {
		return nil, err
	}

	rec, err := o.Store.Open(ctx, root, name)
	if err != nil {
		return nil, err
	}
	head, err := rec.Repo.Head(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve head of %s: %w", name, err)
	}

	o.recordRevert(ctx, root, name, head)

	if err := publish(o.fs(), abs, content); err != nil {
		return nil, err
	}

	o.logger().Info("file reverted",
		zap.String("file", abs),
		zap.String("commit", vcs.ShortID(head)))

	return &Result{
		Path:    abs,
		Root:    root,
		Name:    name,
		Commit:  head,
		Content: content,
		Time:    o.now(),
	}, nil
}

// Previous returns the version Revert would restore without changing
// anything.
func (o *Orchestrator) Previous(ctx context.Context, filePath string) (history.Entry, error) {
	_, root, name, err := o.find(filePath)
	if err != nil {
		return history.Entry{}, err
	}
	return o.Store.Previous(ctx, root, name)
}

// History lists the recorded versions of filePath, newest first. The live
// file is not read or written.
func (o *Orchestrator) History(ctx context.Context, filePath string) ([]history.Entry, error) {
	_, root, name, err := o.find(filePath)
	if err != nil {
		return nil, err
	}
	return o.Store.History(ctx, root, name)
}

// List returns the tracked files of the metadata root nearest to dir. Names
// found on disk but missing from the index are included with only Name set.
func (o *Orchestrator) List(ctx context.Context, dir string) (string, []index.Entry, error) {
	root, err := o.Locator.Find(dir)
	if err != nil {
		return "", nil, err
	}

	idx, err := o.openIndex(ctx, root)
	if err != nil {
		return "", nil, err
	}
	defer idx.Close()

	entries, err := idx.List(ctx)
	if err != nil {
		return "", nil, err
	}

	names, err := o.Store.Names(root)
	if err != nil {
		return "", nil, err
	}

	known := make(map[string]bool, len(entries))
	for _, e := range entries {
		known[e.Name] = true
	}
	for _, n := range names {
		if !known[n] {
			entries = append(entries, index.Entry{Name: n})
		}
	}
	sortEntries(entries)

	return root, entries, nil
}

// Show returns one recorded version of filePath, identified by a commit id
// or unique prefix. Neither the live file nor the record is changed.
func (o *Orchestrator) Show(ctx context.Context, filePath, ref string) (*history.Version, error) {
	_, root, name, err := o.find(filePath)
	if err != nil {
		return nil, err
	}
	return o.Store.Show(ctx, root, name, ref)
}

// Now returns the orchestrator's current time.
func (o *Orchestrator) Now() time.Time {
	return o.now()
}

// find resolves filePath to its record without creating anything. A missing
// metadata root means there is no history for the file.
func (o *Orchestrator) find(filePath string) (abs, root, name string, err error) {
	abs, err = resolveInput(filePath)
	if err != nil {
		return "", "", "", err
	}
	name = filepath.Base(abs)

	root, err = o.Locator.Find(filepath.Dir(abs))
	if err != nil {
		if errors.Is(err, locator.ErrNotFound) {
			return "", "", "", fmt.Errorf("%w: %s", history.ErrRepositoryMissing, name)
		}
		return "", "", "", err
	}
	return abs, root, name, nil
}

// resolveInput returns the absolute path of filePath with symlinks
// resolved, so a file reached through a link shares the history of its
// target and publish replaces the target rather than the link. A path that
// does not exist is returned unresolved.
func resolveInput(filePath string) (string, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", filePath, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return abs, nil
		}
		return "", fmt.Errorf("failed to resolve %s: %w", filePath, err)
	}
	return resolved, nil
}

func (o *Orchestrator) recordRevert(ctx context.Context, root, name, head string) {
	idx, err := o.openIndex(ctx, root)
	if err != nil {
		o.logger().Warn("failed to open index", zap.Error(err))
		return
	}
	defer idx.Close()

	if err := idx.RecordRevert(ctx, name, head); err != nil {
		o.logger().Debug("index not updated", zap.String("file", name), zap.Error(err))
	}
}

func sortEntries(entries []index.Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
}

func (o *Orchestrator) openIndex(ctx context.Context, root string) (*index.Index, error) {
	if o.Index != nil {
		return o.Index(ctx, root)
	}
	return index.OpenRoot(ctx, root)
}

func (o *Orchestrator) unlock(l *lock.Lock) {
	if err := l.Unlock(); err != nil {
		o.logger().Warn("failed to release lock", zap.String("path", l.Path()), zap.Error(err))
	}
}

func (o *Orchestrator) fs() afero.Fs {
	if o.Fs == nil {
		return afero.NewOsFs()
	}
	return o.Fs
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o *Orchestrator) now() time.Time {
	if o.Clock == nil {
		return time.Now()
	}
	return o.Clock()
}
