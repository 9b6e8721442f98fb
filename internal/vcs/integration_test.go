package vcs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adamlabadorf/afj/internal/vcs"
	// Import implementations to trigger auto-registration
	_ "github.com/adamlabadorf/afj/internal/vcs/git"
	_ "github.com/adamlabadorf/afj/internal/vcs/jj"
)

// TestRegistrationIntegration verifies that git and jj implementations
// are properly registered via their init() functions.
func TestRegistrationIntegration(t *testing.T) {
	for _, typ := range []vcs.Type{vcs.TypeGit, vcs.TypeJJ} {
		if !vcs.IsRegistered(typ) {
			t.Errorf("Expected %s to be auto-registered", typ)
		}
	}
}

// TestFactoryEnsureGit exercises the factory against the real git driver.
func TestFactoryEnsureGit(t *testing.T) {
	if !vcs.IsBinaryAvailable("git") {
		t.Skip("git not available")
	}
	ctx := context.Background()
	f := vcs.NewFactory()
	dir := filepath.Join(t.TempDir(), ".afj", "notes.txt")

	v, created, err := f.Ensure(ctx, dir)
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if !created || v.Name() != vcs.TypeGit {
		t.Fatalf("Ensure = (%s, %v), want new git repository", v.Name(), created)
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.txt.new"), []byte("hi\n"), 0644); err != nil {
		t.Fatal(err)
	}
	id, err := v.Commit(ctx, vcs.CommitOptions{Message: "say hi", Paths: []string{"notes.txt.new"}})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	reopened, created, err := f.Ensure(ctx, dir)
	if err != nil {
		t.Fatalf("second Ensure failed: %v", err)
	}
	if created {
		t.Error("second Ensure must not reinitialize")
	}

	head, err := reopened.Head(ctx)
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}
	if head != id {
		t.Errorf("Head = %s, want %s", head, id)
	}

	if _, err := reopened.Parent(ctx, head); !errors.Is(err, vcs.ErrRefNotFound) {
		t.Errorf("Parent(root) = %v, want ErrRefNotFound", err)
	}
}

func TestBinaryVersion(t *testing.T) {
	if !vcs.IsBinaryAvailable("git") {
		t.Skip("git not available")
	}

	v, err := vcs.BinaryVersion(context.Background(), vcs.TypeGit)
	if err != nil {
		t.Fatalf("BinaryVersion(git) error = %v", err)
	}
	if !strings.HasPrefix(v, "git version") {
		t.Errorf("BinaryVersion(git) = %q", v)
	}

	if _, err := vcs.BinaryVersion(context.Background(), vcs.Type("hg")); !errors.Is(err, vcs.ErrUnknownType) {
		t.Errorf("BinaryVersion(hg) error = %v, want unknown type", err)
	}
}
