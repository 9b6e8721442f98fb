// Package vcs provides a unified interface over the version control engines
// that back afj's per-file history.
//
// Every tracked file owns a private repository under the metadata root
// (.afj/<basename>/). The history layer only needs a handful of primitives
// from that repository: initialize-if-absent, stage-and-commit, hard reset,
// path-filtered log, and resolving the parent of a commit. This package
// defines those primitives once and lets each engine implement them the way
// its CLI expects.
//
// # Architecture
//
// The VCS interface is implemented by drivers that register themselves from
// an init() function, the same way database/sql drivers do:
//
//	import _ "github.com/adamlabadorf/afj/internal/vcs/git" // registers "git"
//	import _ "github.com/adamlabadorf/afj/internal/vcs/jj"  // registers "jj"
//
// A Factory opens the repository living in a directory, or initializes one
// with the preferred engine when none exists:
//
//	f := vcs.NewFactory(vcs.WithPreferredType(vcs.TypeGit))
//	v, err := f.Ensure(ctx, "/project/.afj/main.go")
//	if err != nil {
//	    return err
//	}
//	id, err := v.Commit(ctx, vcs.CommitOptions{Message: "tidy", Paths: []string{"main.go.new"}})
//
// # Implementations
//
//   - internal/vcs/git: git CLI
//   - internal/vcs/jj: Jujutsu CLI (non-colocated)
package vcs

import (
	"context"
	"time"
)

// Type represents the VCS backend type
type Type string

const (
	// TypeGit indicates a git repository
	TypeGit Type = "git"

	// TypeJJ indicates a jj repository (non-colocated)
	TypeJJ Type = "jj"
)

// String returns the string representation of the VCS type
func (t Type) String() string {
	return string(t)
}

// ParseType converts a user-supplied engine name into a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "git", "":
		return TypeGit, nil
	case "jj", "jujutsu":
		return TypeJJ, nil
	default:
		return "", &UnknownTypeError{Name: s}
	}
}

// VCS defines the operations afj needs from an isolated history repository.
// Implementations exist for git (internal/vcs/git) and jj (internal/vcs/jj).
//
// A repository is always rooted at a single directory; implementations must
// never walk up the tree, otherwise a history directory nested inside a
// project checkout would be mistaken for the project repository itself.
type VCS interface {
	// ===================
	// Identity
	// ===================

	// Name returns the VCS type
	Name() Type

	// ===================
	// History Operations
	// ===================

	// Commit stages opts.Paths and records a new commit.
	// Returns the full commit ID of the new head.
	Commit(ctx context.Context, opts CommitOptions) (string, error)

	// Head returns the commit ID of the most recent recorded version.
	// Returns ErrNoCommits if nothing has been committed yet.
	Head(ctx context.Context) (string, error)

	// Parent returns the commit ID immediately preceding ref.
	// Returns ErrRefNotFound if ref has no parent.
	Parent(ctx context.Context, ref string) (string, error)

	// ResetHard moves the head pointer and the working files to ref,
	// discarding anything recorded after it from the visible history.
	ResetHard(ctx context.Context, ref string) error

	// Log returns the commits reachable from the head, newest first.
	// If opts.Paths is set, only commits touching those paths are returned.
	Log(ctx context.Context, opts LogOptions) ([]CommitInfo, error)

	// GetCommitHash resolves ref (an id, unique prefix or engine revision
	// expression) to a full commit ID.
	// Returns ErrRefNotFound if ref does not resolve.
	GetCommitHash(ctx context.Context, ref string) (string, error)

	// ExtractFileFromRef returns the content path had at ref, without
	// touching the working files.
	ExtractFileFromRef(ctx context.Context, ref, path string) ([]byte, error)

	// ===================
	// Raw Command Execution
	// ===================

	// Exec executes a raw VCS command (escape hatch).
	// Use sparingly; prefer interface methods.
	Exec(ctx context.Context, args ...string) ([]byte, error)
}

// ===================
// Supporting Types
// ===================

// CommitOptions configures a commit operation
type CommitOptions struct {
	// Message is the commit message. It is recorded verbatim: no comment
	// stripping, whitespace cleanup, or truncation.
	Message string

	// Paths specifies files to stage and commit, relative to the repo root.
	Paths []string

	// AllowEmpty records a commit even when the content did not change
	AllowEmpty bool
}

// LogOptions configures a log query
type LogOptions struct {
	// Paths restricts the log to commits touching these paths
	Paths []string

	// Limit caps the number of entries; zero means no limit
	Limit int
}

// CommitInfo describes one recorded version
type CommitInfo struct {
	// ID is the full commit hash
	ID string

	// ShortID is the abbreviated commit hash as printed by the engine
	ShortID string

	// Message is the full commit message
	Message string

	// Time is the committer timestamp
	Time time.Time
}

// ===================
// Constants
// ===================

// ShortIDLength is the abbreviation length requested from engines that
// do not pick one themselves.
const ShortIDLength = 7
