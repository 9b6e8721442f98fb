package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ===================
// Command Execution Utilities
// ===================

// ExecOptions tunes a single engine invocation.
type ExecOptions struct {
	// Dir is the working directory
	Dir string

	// Env is appended to the process environment
	Env []string

	// Stdin is fed to the command, if set
	Stdin io.Reader
}

// ExecContext executes a VCS command with context support.
// This is a common utility for git and jj implementations.
//
// A non-zero exit is returned as a *CommandError carrying stderr, so callers
// can match it with errors.Is(err, ErrCommandFailed).
//
// Example:
//
//	output, err := ExecContext(ctx, ExecOptions{Dir: repoRoot}, "git", "status", "--porcelain")
func ExecContext(ctx context.Context, opts ExecOptions, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	if opts.Stdin != nil {
		cmd.Stdin = opts.Stdin
	}

	// Capture output
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if LogOperations() {
		fmt.Fprintf(os.Stderr, "+ (%s) %s %s\n", opts.Dir, name, strings.Join(args, " "))
	}

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrVCSNotAvailable, name)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		output := stderr.Bytes()
		if len(output) == 0 {
			output = stdout.Bytes()
		}
		return nil, NewCommandError(name, args, output, err)
	}

	return stdout.Bytes(), nil
}

// ===================
// Output Parsing Utilities
// ===================

// SplitRecords splits output produced with a record separator, dropping the
// empty tail after the final separator.
func SplitRecords(output []byte, sep string) []string {
	if len(output) == 0 {
		return nil
	}

	parts := strings.Split(string(output), sep)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		result = append(result, strings.TrimLeft(p, "\n"))
	}
	return result
}

// ===================
// String Utilities
// ===================

// TrimOutput trims whitespace and trailing newlines from command output.
func TrimOutput(output []byte) string {
	return strings.TrimSpace(string(output))
}

// ShortID abbreviates a full commit hash.
func ShortID(id string) string {
	if len(id) <= ShortIDLength {
		return id
	}
	return id[:ShortIDLength]
}
