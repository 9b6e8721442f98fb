package vcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DetectionResult contains information about the detected VCS
type DetectionResult struct {
	// Type is the detected VCS type
	Type Type

	// RepoRoot is the repository root directory path
	RepoRoot string
}

// Detect identifies the VCS type of the repository rooted exactly at dir.
//
// Unlike project-level detection, the search never walks up parent
// directories: a history directory lives inside the user's project tree,
// and the project's own .git must not be mistaken for it.
//
// When several registered markers are present (a colocated jj repo also
// carries a .git), preferred wins; otherwise types are tried in sorted order.
//
// Returns ErrNotInVCS if no marker is found.
func Detect(dir string, preferred Type) (*DetectionResult, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	candidates := RegisteredTypes()
	if preferred != "" {
		ordered := []Type{preferred}
		for _, t := range candidates {
			if t != preferred {
				ordered = append(ordered, t)
			}
		}
		candidates = ordered
	}

	for _, t := range candidates {
		d, ok := getDriver(t)
		if !ok || d.Marker == "" {
			continue
		}
		marker := filepath.Join(absDir, d.Marker)
		if _, err := os.Stat(marker); err == nil {
			return &DetectionResult{
				Type:     t,
				RepoRoot: absDir,
			}, nil
		}
	}

	return nil, ErrNotInVCS
}

// IsAvailable checks if the binary backing t is available on PATH
func IsAvailable(t Type) bool {
	d, ok := getDriver(t)
	if !ok {
		return false
	}
	if d.Binary == "" {
		return true
	}
	return IsBinaryAvailable(d.Binary)
}

// BinaryVersion runs `<binary> --version` for the driver of t and returns
// the first line of its output.
func BinaryVersion(ctx context.Context, t Type) (string, error) {
	d, ok := getDriver(t)
	if !ok {
		return "", &UnknownTypeError{Name: string(t)}
	}
	if d.Binary == "" {
		return "", ErrVCSNotAvailable
	}

	out, err := ExecContext(ctx, ExecOptions{}, d.Binary, "--version")
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(TrimOutput(out), "\n")
	return line, nil
}

// IsBinaryAvailable checks if the named command can be found on PATH
func IsBinaryAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
