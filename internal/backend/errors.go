package backend

import (
	"errors"
	"fmt"
)

// Sentinel errors for generation.
var (
	// ErrBackend matches every generation failure, including *Error.
	ErrBackend = errors.New("generation backend failed")

	// ErrUnknownProvider indicates the requested provider is not registered.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrMissingAPIKey indicates a live provider was built without credentials.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrEmptyResponse indicates the model replied without any text.
	ErrEmptyResponse = errors.New("empty response from model")
)

// Error wraps provider errors with context.
type Error struct {
	Provider string // Provider name ("anthropic", "gemini")
	Op       string // Operation that failed ("generate")
	Err      error  // Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes every *Error match ErrBackend.
func (e *Error) Is(target error) bool {
	return target == ErrBackend
}

// NewError creates a new provider error.
func NewError(provider, op string, err error) *Error {
	return &Error{Provider: provider, Op: op, Err: err}
}
