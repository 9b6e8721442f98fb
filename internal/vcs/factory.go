package vcs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Factory opens and initializes repositories based on detected type and
// preferences.
type Factory struct {
	// preferredType is the engine used to initialize new repositories and
	// the one that wins when a directory carries several markers
	preferredType Type
}

// NewFactory creates a new VCS factory with the specified options.
//
// Default behavior:
//   - New repositories are initialized with git
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		preferredType: TypeGit,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FactoryOption configures the factory
type FactoryOption func(*Factory)

// WithPreferredType sets the VCS type used for new repositories
func WithPreferredType(t Type) FactoryOption {
	return func(f *Factory) {
		if t != "" {
			f.preferredType = t
		}
	}
}

// PreferredType returns the engine new repositories are created with.
func (f *Factory) PreferredType() Type {
	return f.preferredType
}

// Open returns the VCS for the repository rooted at dir.
//
// Returns ErrNotInVCS if dir holds no repository, and ErrVCSNotAvailable if
// the repository's engine binary is missing.
func (f *Factory) Open(dir string) (VCS, error) {
	result, err := Detect(dir, f.preferredType)
	if err != nil {
		return nil, err
	}

	if !IsAvailable(result.Type) {
		return nil, fmt.Errorf("%w: %s", ErrVCSNotAvailable, result.Type)
	}

	return f.createImplementation(result.Type, result)
}

// Ensure opens the repository rooted at dir, initializing one with the
// preferred engine when none exists. The boolean reports whether a new
// repository was created. Calling Ensure on an initialized directory never
// reinitializes it.
func (f *Factory) Ensure(ctx context.Context, dir string) (VCS, bool, error) {
	v, err := f.Open(dir)
	if err == nil {
		return v, false, nil
	}
	if !errors.Is(err, ErrNotInVCS) {
		return nil, false, err
	}

	d, ok := getDriver(f.preferredType)
	if !ok {
		return nil, false, fmt.Errorf("no registered driver for VCS type: %s (available: %v)", f.preferredType, RegisteredTypes())
	}
	if !IsAvailable(f.preferredType) {
		return nil, false, fmt.Errorf("%w: %s", ErrVCSNotAvailable, f.preferredType)
	}

	v, err = d.Init(ctx, dir)
	if err != nil {
		return nil, false, fmt.Errorf("failed to initialize %s repository in %s: %w", f.preferredType, dir, err)
	}
	return v, true, nil
}

// createImplementation opens the repository using the registered driver.
func (f *Factory) createImplementation(implType Type, result *DetectionResult) (VCS, error) {
	d, ok := getDriver(implType)
	if !ok {
		return nil, fmt.Errorf("no registered driver for VCS type: %s (available: %v)", implType, RegisteredTypes())
	}

	v, err := d.Open(result.RepoRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s repository: %w", implType, err)
	}

	return v, nil
}

// ===================
// Feature Flags
// ===================

// LogOperations reports whether raw engine commands should be traced.
// Read from AFJ_VCS_LOG.
func LogOperations() bool {
	return envBool("AFJ_VCS_LOG", false)
}

// envBool reads a boolean from an environment variable.
// Returns defaultVal if the variable is not set or cannot be parsed.
func envBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		// Also accept "yes", "on" as true
		switch v {
		case "yes", "on", "YES", "ON":
			return true
		case "no", "off", "NO", "OFF":
			return false
		}
	}
	return defaultVal
}
