// Package git provides a Git implementation of the VCS interface.
//
// This package wraps git commands to provide the operations needed by the
// history store: initialize, commit, hard reset, and path-filtered log for a
// repository rooted at one directory.
package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adamlabadorf/afj/internal/vcs"
)

const binary = "git"

// Default identity written into isolated repositories when the user has no
// global one configured; commits would fail otherwise.
const (
	DefaultUserName  = "afj"
	DefaultUserEmail = "afj@localhost"
)

// Git implements the VCS interface for git repositories.
type Git struct {
	// repoRoot is the repository root directory path
	repoRoot string

	// vcsDir is the .git directory path
	vcsDir string
}

// New opens the git repository rooted exactly at path.
// Returns vcs.ErrNotInVCS if path has no .git directory.
func New(path string) (*Git, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	gitDir := filepath.Join(absPath, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil, vcs.ErrNotInVCS
	}

	return &Git{
		repoRoot: normalizeRepoRoot(absPath),
		vcsDir:   gitDir,
	}, nil
}

// Init initializes a git repository in path (creating the directory if
// needed) and opens it. Running Init on an existing repository is safe:
// git init only reinitializes templates and never touches history.
func Init(ctx context.Context, path string) (*Git, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create repository directory: %w", err)
	}

	g := &Git{
		repoRoot: absPath,
		vcsDir:   filepath.Join(absPath, ".git"),
	}
	if _, err := g.run(ctx, "init", "-q"); err != nil {
		return nil, err
	}
	if err := g.ensureIdentity(ctx); err != nil {
		return nil, err
	}

	return New(absPath)
}

// ensureIdentity writes a repository-local identity if git cannot find one,
// and disables commit signing for the isolated repository.
func (g *Git) ensureIdentity(ctx context.Context) error {
	if _, err := g.run(ctx, "config", "user.email"); err != nil {
		if _, err := g.run(ctx, "config", "user.email", DefaultUserEmail); err != nil {
			return err
		}
	}
	if _, err := g.run(ctx, "config", "user.name"); err != nil {
		if _, err := g.run(ctx, "config", "user.name", DefaultUserName); err != nil {
			return err
		}
	}
	_, err := g.run(ctx, "config", "commit.gpgsign", "false")
	return err
}

// normalizeRepoRoot normalizes the repository root path
// Resolves symlinks so paths compare equal across /tmp -> /private/tmp style links
func normalizeRepoRoot(path string) string {
	path = filepath.FromSlash(path)

	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}

	return path
}

// Name returns the VCS type (git)
func (g *Git) Name() vcs.Type {
	return vcs.TypeGit
}

// Exec executes a raw git command
func (g *Git) Exec(ctx context.Context, args ...string) ([]byte, error) {
	return g.run(ctx, args...)
}

// run executes git against this repository only. GIT_DIR and GIT_WORK_TREE
// are pinned so that an inherited environment (hooks, outer worktrees) can
// never redirect the command to the enclosing project repository.
func (g *Git) run(ctx context.Context, args ...string) ([]byte, error) {
	return vcs.ExecContext(ctx, vcs.ExecOptions{
		Dir: g.repoRoot,
		Env: []string{
			"GIT_DIR=" + g.vcsDir,
			"GIT_WORK_TREE=" + g.repoRoot,
			"GIT_TERMINAL_PROMPT=0",
		},
	}, binary, args...)
}
