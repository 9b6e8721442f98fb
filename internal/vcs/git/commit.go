package git

import (
	"context"
	"errors"
	"fmt"

	"github.com/adamlabadorf/afj/internal/vcs"
)

// Add stages files for commit
func (g *Git) Add(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	args := append([]string{"add", "--"}, paths...)
	if _, err := g.run(ctx, args...); err != nil {
		return fmt.Errorf("git add failed: %w", err)
	}

	return nil
}

// Commit stages opts.Paths and creates a commit.
//
// The message is passed with --cleanup=verbatim so that lines starting with
// '#' and surrounding whitespace survive exactly as given.
func (g *Git) Commit(ctx context.Context, opts vcs.CommitOptions) (string, error) {
	if err := g.Add(ctx, opts.Paths); err != nil {
		return "", err
	}

	args := []string{
		"commit", "-q",
		"--no-verify",
		"--no-gpg-sign",
		"--cleanup=verbatim",
		"--allow-empty-message",
		"-m", opts.Message,
	}

	if opts.AllowEmpty {
		args = append(args, "--allow-empty")
	}

	if _, err := g.run(ctx, args...); err != nil {
		return "", fmt.Errorf("git commit failed: %w", err)
	}

	return g.Head(ctx)
}

// Head returns the commit hash HEAD points to
func (g *Git) Head(ctx context.Context) (string, error) {
	output, err := g.run(ctx, "rev-parse", "--verify", "-q", "HEAD^{commit}")
	if err != nil {
		if errors.Is(err, vcs.ErrCommandFailed) {
			return "", vcs.ErrNoCommits
		}
		return "", err
	}

	return vcs.TrimOutput(output), nil
}

// Parent returns the first parent of ref
func (g *Git) Parent(ctx context.Context, ref string) (string, error) {
	output, err := g.run(ctx, "rev-parse", "--verify", "-q", ref+"~1^{commit}")
	if err != nil {
		if errors.Is(err, vcs.ErrCommandFailed) {
			return "", fmt.Errorf("%w: parent of %s", vcs.ErrRefNotFound, ref)
		}
		return "", err
	}

	return vcs.TrimOutput(output), nil
}

// ResetHard moves HEAD, the index, and the working tree to ref
func (g *Git) ResetHard(ctx context.Context, ref string) error {
	if _, err := g.run(ctx, "reset", "-q", "--hard", ref); err != nil {
		return fmt.Errorf("git reset failed: %w", err)
	}

	return nil
}

// GetCommitHash returns the full commit hash for ref, which may be any
// unambiguous prefix.
func (g *Git) GetCommitHash(ctx context.Context, ref string) (string, error) {
	output, err := g.run(ctx, "rev-parse", "--verify", "-q", ref+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("failed to resolve ref %s: %w", ref, vcs.ErrRefNotFound)
	}

	return vcs.TrimOutput(output), nil
}

// ExtractFileFromRef returns the content path had at ref.
func (g *Git) ExtractFileFromRef(ctx context.Context, ref, path string) ([]byte, error) {
	output, err := g.run(ctx, "cat-file", "blob", ref+":"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract file from ref: %w", err)
	}

	return output, nil
}
