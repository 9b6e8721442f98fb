package vcs

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by VCS operations.
//
// These errors can be checked using errors.Is() for proper error handling:
//
//	if errors.Is(err, vcs.ErrNotInVCS) {
//	    // no repository has been initialized in that directory yet
//	}
var (
	// ErrNotInVCS is returned when the directory holds no repository
	// of any registered type.
	ErrNotInVCS = errors.New("not in a VCS repository")

	// ErrVCSNotAvailable is returned when the required VCS binary
	// (git or jj) is not installed or not in PATH.
	ErrVCSNotAvailable = errors.New("VCS binary not available")

	// ErrRefNotFound is returned when a reference does not resolve,
	// including the parent of a root commit.
	ErrRefNotFound = errors.New("reference not found")

	// ErrNoCommits is returned when the repository has no commits yet.
	ErrNoCommits = errors.New("repository has no commits")

	// ErrCommandFailed is returned when the engine exits non-zero.
	// The concrete error is a *CommandError carrying the output.
	ErrCommandFailed = errors.New("VCS command failed")

	// ErrUnknownType is returned for engine names nobody registered.
	ErrUnknownType = errors.New("unknown VCS type")
)

// CommandError describes a failed engine invocation.
type CommandError struct {
	// Engine is the binary that was run (git, jj)
	Engine string

	// Args are the arguments passed to the binary
	Args []string

	// Output is the trimmed stderr (or combined output) of the command
	Output string

	// Err is the underlying exec error
	Err error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s failed", e.Engine, strings.Join(e.Args, " "))
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Output != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Output)
	}
	return msg
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// Is makes every CommandError match ErrCommandFailed.
func (e *CommandError) Is(target error) bool {
	return target == ErrCommandFailed
}

// NewCommandError creates a CommandError for engine invoked with args.
func NewCommandError(engine string, args []string, output []byte, err error) *CommandError {
	return &CommandError{
		Engine: engine,
		Args:   args,
		Output: strings.TrimSpace(string(output)),
		Err:    err,
	}
}

// UnknownTypeError is returned by ParseType for unsupported engine names.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown VCS type %q (supported: git, jj)", e.Name)
}

// Is makes every UnknownTypeError match ErrUnknownType.
func (e *UnknownTypeError) Is(target error) bool {
	return target == ErrUnknownType
}

// IsFatal returns true if the error indicates that no engine can run at all.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	// Binary not available means we can't execute commands
	return errors.Is(err, ErrVCSNotAvailable)
}
