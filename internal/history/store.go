// Package history keeps the per-file version history of tracked files.
//
// Every tracked file owns a record: the directory <root>/<name>/ holding an
// isolated repository and the artifact <name>.new. Each version is one
// commit of the artifact whose message is the instruction that produced it.
// The live file never enters the repository.
package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/adamlabadorf/afj/internal/locator"
	"github.com/adamlabadorf/afj/internal/vcs"
)

// ArtifactSuffix is appended to the base name to form the artifact name.
const ArtifactSuffix = ".new"

// Store manages records below a metadata root.
type Store struct {
	Fs      afero.Fs
	Engines *vcs.Factory
	Logger  *zap.Logger
}

// NewStore returns a Store over the OS filesystem.
func NewStore(engines *vcs.Factory, logger *zap.Logger) *Store {
	return &Store{Fs: afero.NewOsFs(), Engines: engines, Logger: logger}
}

// Record is an opened tracked-file record.
type Record struct {
	// Root is the metadata root the record lives under
	Root string

	// Name is the tracked file's base name
	Name string

	// Dir is <Root>/<Name>
	Dir string

	// Repo is the isolated repository rooted at Dir
	Repo vcs.VCS

	// Created reports whether the repository was initialized by this call
	Created bool
}

// Artifact returns the artifact file name, relative to Dir.
func (r *Record) Artifact() string {
	return r.Name + ArtifactSuffix
}

// ArtifactPath returns the absolute artifact path.
func (r *Record) ArtifactPath() string {
	return filepath.Join(r.Dir, r.Artifact())
}

// Entry is one recorded version, as shown by the history command.
type Entry struct {
	ID      string    `json:"id" yaml:"id"`
	ShortID string    `json:"short_id" yaml:"short_id"`
	Message string    `json:"message" yaml:"message"`
	Time    time.Time `json:"time" yaml:"time"`
}

// Version is a recorded version together with its artifact content.
type Version struct {
	Entry   `yaml:",inline"`
	Content string `json:"content" yaml:"content"`
}

// ValidateName reports whether name can address a record.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case name == locator.DirName, name == locator.StateDirName:
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	}
	return nil
}

// EnsureRepository opens the record for name, creating its directory and
// initializing the repository with the preferred engine only when none
// exists. Existing history is never touched.
func (s *Store) EnsureRepository(ctx context.Context, root, name string) (*Record, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	dir := filepath.Join(root, name)
	if err := s.fs().MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create record directory %s: %w", dir, err)
	}

	repo, created, err := s.engines().Ensure(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open history for %s: %w", name, err)
	}

	if created {
		s.logger().Info("initialized history repository",
			zap.String("file", name),
			zap.String("engine", repo.Name().String()),
			zap.String("dir", dir))
	}

	return &Record{Root: root, Name: name, Dir: dir, Repo: repo, Created: created}, nil
}

// Open opens an existing record without creating anything.
// Returns ErrRepositoryMissing when the record directory or its repository
// does not exist.
func (s *Store) Open(ctx context.Context, root, name string) (*Record, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	dir := filepath.Join(root, name)
	ok, err := afero.DirExists(s.fs(), dir)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", dir, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRepositoryMissing, name)
	}

	repo, err := s.engines().Open(dir)
	if err != nil {
		if errors.Is(err, vcs.ErrNotInVCS) {
			return nil, fmt.Errorf("%w: %s", ErrRepositoryMissing, name)
		}
		return nil, fmt.Errorf("failed to open history for %s: %w", name, err)
	}

	return &Record{Root: root, Name: name, Dir: dir, Repo: repo}, nil
}

// Commit writes content as the artifact and records it with message as the
// commit message, verbatim. A commit is recorded even when the content is
// unchanged so that every instruction appears in the history.
// Returns the full commit id.
func (s *Store) Commit(ctx context.Context, root, name string, content []byte, message string) (string, error) {
	rec, err := s.Open(ctx, root, name)
	if err != nil {
		return "", err
	}

	if err := afero.WriteFile(s.fs(), rec.ArtifactPath(), content, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	id, err := rec.Repo.Commit(ctx, vcs.CommitOptions{
		Message:    message,
		Paths:      []string{rec.Artifact()},
		AllowEmpty: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to record version of %s: %w", name, err)
	}

	s.logger().Debug("recorded version",
		zap.String("file", name),
		zap.String("commit", id))

	return id, nil
}

// RevertToPrevious moves the record back to the version preceding the
// newest one and returns the restored artifact content.
//
// With zero or one recorded versions it returns ErrNoPriorVersion and leaves
// the repository untouched.
func (s *Store) RevertToPrevious(ctx context.Context, root, name string) ([]byte, error) {
	rec, err := s.Open(ctx, root, name)
	if err != nil {
		return nil, err
	}

	_, parent, err := s.headAndParent(ctx, rec)
	if err != nil {
		return nil, err
	}

	if err := rec.Repo.ResetHard(ctx, parent); err != nil {
		return nil, fmt.Errorf("failed to reset %s: %w", name, err)
	}

	content, err := afero.ReadFile(s.fs(), rec.ArtifactPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingArtifact, rec.ArtifactPath())
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	s.logger().Info("reverted to previous version",
		zap.String("file", name),
		zap.String("commit", vcs.ShortID(parent)))

	return content, nil
}

// Previous returns the entry RevertToPrevious would restore, without
// changing anything.
func (s *Store) Previous(ctx context.Context, root, name string) (Entry, error) {
	rec, err := s.Open(ctx, root, name)
	if err != nil {
		return Entry{}, err
	}

	_, parent, err := s.headAndParent(ctx, rec)
	if err != nil {
		return Entry{}, err
	}

	commits, err := rec.Repo.Log(ctx, vcs.LogOptions{Limit: 2})
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read history of %s: %w", name, err)
	}
	for _, c := range commits {
		if c.ID == parent {
			return entryFromCommit(c), nil
		}
	}
	return Entry{ID: parent, ShortID: vcs.ShortID(parent)}, nil
}

// History lists the versions of the record, newest first.
func (s *Store) History(ctx context.Context, root, name string) ([]Entry, error) {
	rec, err := s.Open(ctx, root, name)
	if err != nil {
		return nil, err
	}

	touched, err := rec.Repo.Log(ctx, vcs.LogOptions{Paths: []string{rec.Artifact()}, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to read history of %s: %w", name, err)
	}
	if len(touched) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoArtifact, name)
	}

	commits, err := rec.Repo.Log(ctx, vcs.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read history of %s: %w", name, err)
	}

	entries := make([]Entry, 0, len(commits))
	for _, c := range commits {
		entries = append(entries, entryFromCommit(c))
	}
	return entries, nil
}

// Show returns the version ref names, read straight from the repository.
// ref may be a full id or a unique prefix; it must belong to the current
// history, so versions dropped by a revert are not shown.
func (s *Store) Show(ctx context.Context, root, name, ref string) (*Version, error) {
	if ref == "" || strings.HasPrefix(ref, "-") {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVersion, ref)
	}

	rec, err := s.Open(ctx, root, name)
	if err != nil {
		return nil, err
	}

	id, err := rec.Repo.GetCommitHash(ctx, ref)
	if err != nil {
		if errors.Is(err, vcs.ErrRefNotFound) || errors.Is(err, vcs.ErrCommandFailed) {
			return nil, fmt.Errorf("%w: %s in %s", ErrUnknownVersion, ref, name)
		}
		return nil, err
	}

	commits, err := rec.Repo.Log(ctx, vcs.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read history of %s: %w", name, err)
	}

	for _, c := range commits {
		if c.ID != id {
			continue
		}

		content, err := rec.Repo.ExtractFileFromRef(ctx, id, rec.Artifact())
		if err != nil {
			if errors.Is(err, vcs.ErrCommandFailed) {
				return nil, fmt.Errorf("%w: %s at %s", ErrMissingArtifact, rec.Artifact(), vcs.ShortID(id))
			}
			return nil, err
		}
		return &Version{Entry: entryFromCommit(c), Content: string(content)}, nil
	}

	return nil, fmt.Errorf("%w: %s in %s", ErrUnknownVersion, ref, name)
}

// Names lists the record directories present under root, sorted.
func (s *Store) Names(root string) ([]string, error) {
	infos, err := afero.ReadDir(s.fs(), root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}

	var names []string
	for _, info := range infos {
		if !info.IsDir() || ValidateName(info.Name()) != nil {
			continue
		}
		names = append(names, info.Name())
	}
	sort.Strings(names)
	return names, nil
}

// headAndParent resolves the newest version and the one before it.
func (s *Store) headAndParent(ctx context.Context, rec *Record) (string, string, error) {
	head, err := rec.Repo.Head(ctx)
	if err != nil {
		if errors.Is(err, vcs.ErrNoCommits) {
			return "", "", fmt.Errorf("%w: %s has no recorded versions", ErrNoPriorVersion, rec.Name)
		}
		return "", "", fmt.Errorf("failed to resolve head of %s: %w", rec.Name, err)
	}

	parent, err := rec.Repo.Parent(ctx, head)
	if err != nil {
		if errors.Is(err, vcs.ErrRefNotFound) {
			return "", "", fmt.Errorf("%w: %s has only one version", ErrNoPriorVersion, rec.Name)
		}
		return "", "", fmt.Errorf("failed to resolve previous version of %s: %w", rec.Name, err)
	}

	return head, parent, nil
}

func entryFromCommit(c vcs.CommitInfo) Entry {
	short := c.ShortID
	if short == "" {
		short = vcs.ShortID(c.ID)
	}
	return Entry{ID: c.ID, ShortID: short, Message: c.Message, Time: c.Time}
}

func (s *Store) fs() afero.Fs {
	if s.Fs == nil {
		return afero.NewOsFs()
	}
	return s.Fs
}

func (s *Store) engines() *vcs.Factory {
	if s.Engines == nil {
		return vcs.NewFactory()
	}
	return s.Engines
}

func (s *Store) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
