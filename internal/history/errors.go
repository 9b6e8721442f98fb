package history

import "errors"

// Errors returned by Store operations. Check them with errors.Is.
var (
	// ErrRepositoryMissing is returned when a record directory or its
	// repository does not exist yet.
	ErrRepositoryMissing = errors.New("no history repository for this file")

	// ErrNoPriorVersion is returned by RevertToPrevious when the record has
	// fewer than two versions.
	ErrNoPriorVersion = errors.New("no previous version to revert to")

	// ErrMissingArtifact is returned when the artifact is absent from the
	// working state after a revert, or from the version Show reads.
	ErrMissingArtifact = errors.New("artifact missing after revert")

	// ErrNoArtifact is returned by History when the artifact was never
	// committed.
	ErrNoArtifact = errors.New("no recorded versions of this file")

	// ErrUnknownVersion is returned by Show when a reference does not name
	// a version in the current history.
	ErrUnknownVersion = errors.New("no such version in the history")

	// ErrInvalidName is returned for base names that cannot address a
	// record (empty, ".", "..", path separators, reserved names).
	ErrInvalidName = errors.New("invalid tracked file name")
)
