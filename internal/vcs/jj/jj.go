// Package jj implements the VCS interface for Jujutsu (jj).
//
// Jujutsu is a Git-compatible version control system with automatic change
// tracking. The working copy is itself a change (@); committing seals it and
// opens a fresh empty change on top, so the latest recorded version is
// always @-.
//
// This implementation wraps the jj CLI using os/exec. Repositories are
// created non-colocated (only a .jj directory) so a history directory never
// looks like a git checkout.
package jj

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adamlabadorf/afj/internal/vcs"
)

const binary = "jj"

// JJ implements the VCS interface for Jujutsu.
type JJ struct {
	// repoRoot is the repository root directory
	repoRoot string

	// jjDir is the .jj directory path
	jjDir string
}

// New creates a new JJ instance for the given repository root.
//
// The repository must already be initialized with jj (have a .jj directory
// directly inside repoRoot). Use Init() to create a new jj repository.
func New(repoRoot string) (*JJ, error) {
	absRoot, err := filepath.Abs(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repository root: %w", err)
	}

	jjDir := filepath.Join(absRoot, ".jj")
	info, err := os.Stat(jjDir)
	if err != nil || !info.IsDir() {
		return nil, vcs.ErrNotInVCS
	}

	return &JJ{
		repoRoot: absRoot,
		jjDir:    jjDir,
	}, nil
}

// Init initializes a new non-colocated jj repository in path, creating the
// directory if needed. An existing repository is opened as-is.
func Init(ctx context.Context, path string) (*JJ, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	if j, err := New(absPath); err == nil {
		return j, nil
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create repository directory: %w", err)
	}

	if _, err := vcs.ExecContext(ctx, vcs.ExecOptions{Dir: absPath}, binary, "git", "init", "--quiet", absPath); err != nil {
		return nil, fmt.Errorf("failed to initialize jj repository: %w", err)
	}

	return New(absPath)
}

// ===================
// Identity
// ===================

// Name returns the VCS type.
func (j *JJ) Name() vcs.Type {
	return vcs.TypeJJ
}

// ===================
// Raw Command Execution
// ===================

// Exec executes a raw jj command against this repository.
// This is the internal command runner used by all other methods.
func (j *JJ) Exec(ctx context.Context, args ...string) ([]byte, error) {
	full := append([]string{"-R", j.repoRoot, "--no-pager", "--color=never"}, args...)
	return vcs.ExecContext(ctx, vcs.ExecOptions{Dir: j.repoRoot}, binary, full...)
}

// execWithOutput is a helper that runs a command and returns stdout as string.
func (j *JJ) execWithOutput(ctx context.Context, args ...string) (string, error) {
	output, err := j.Exec(ctx, args...)
	if err != nil {
		return "", err
	}
	return vcs.TrimOutput(output), nil
}
