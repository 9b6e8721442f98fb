package orchestrator

import "errors"

var (
	// ErrInputNotFound is returned when the file to modify does not exist.
	ErrInputNotFound = errors.New("input file not found")

	// ErrPublish is returned when the new content was recorded in history
	// but could not be written over the live file.
	ErrPublish = errors.New("failed to update the live file")
)

// publishHint is appended to ErrPublish failures.
const publishHint = "history already holds the new version; run `afj rev` or repeat the command to resync the file"
