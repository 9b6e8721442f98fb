package vcs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFactoryDefaults(t *testing.T) {
	f := NewFactory()
	if f.PreferredType() != TypeGit {
		t.Errorf("Expected default preferred type git, got %s", f.PreferredType())
	}

	f = NewFactory(WithPreferredType(""))
	if f.PreferredType() != TypeGit {
		t.Errorf("Empty preference should keep git, got %s", f.PreferredType())
	}

	f = NewFactory(WithPreferredType(TypeJJ))
	if f.PreferredType() != TypeJJ {
		t.Errorf("Expected preferred type jj, got %s", f.PreferredType())
	}
}

func TestFactoryEnsure(t *testing.T) {
	typeName := uniqueTestType("ensure-test")
	Register(typeName, newMockDriver(typeName))

	f := NewFactory(WithPreferredType(typeName))
	dir := filepath.Join(t.TempDir(), "record")
	ctx := context.Background()

	v, created, err := f.Ensure(ctx, dir)
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if !created {
		t.Error("Expected first Ensure to create a repository")
	}
	if v.Name() != typeName {
		t.Errorf("Expected %s, got %s", typeName, v.Name())
	}

	v, created, err = f.Ensure(ctx, dir)
	if err != nil {
		t.Fatalf("Second Ensure failed: %v", err)
	}
	if created {
		t.Error("Second Ensure must not reinitialize")
	}
	if v.Name() != typeName {
		t.Errorf("Expected %s, got %s", typeName, v.Name())
	}
}

func TestFactoryEnsureUnregistered(t *testing.T) {
	f := NewFactory(WithPreferredType(uniqueTestType("missing")))

	if _, _, err := f.Ensure(context.Background(), t.TempDir()); err == nil {
		t.Error("Expected error for unregistered preferred type")
	}
}

func TestFactoryOpen(t *testing.T) {
	typeName := uniqueTestType("open-test")
	Register(typeName, newMockDriver(typeName))
	f := NewFactory(WithPreferredType(typeName))

	dir := t.TempDir()
	if _, err := f.Open(dir); !errors.Is(err, ErrNotInVCS) {
		t.Errorf("Open on empty dir: expected ErrNotInVCS, got %v", err)
	}

	if err := os.Mkdir(filepath.Join(dir, "."+string(typeName)), 0755); err != nil {
		t.Fatal(err)
	}

	v, err := f.Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if v.Name() != typeName {
		t.Errorf("Expected %s, got %s", typeName, v.Name())
	}
}

func TestDetectDoesNotWalkUp(t *testing.T) {
	typeName := uniqueTestType("walk-test")
	Register(typeName, newMockDriver(typeName))

	parent := t.TempDir()
	if err := os.Mkdir(filepath.Join(parent, "."+string(typeName)), 0755); err != nil {
		t.Fatal(err)
	}
	child := filepath.Join(parent, "child")
	if err := os.Mkdir(child, 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := Detect(child, typeName); !errors.Is(err, ErrNotInVCS) {
		t.Errorf("Detect(child) expected ErrNotInVCS, got %v", err)
	}

	result, err := Detect(parent, typeName)
	if err != nil {
		t.Fatalf("Detect(parent) failed: %v", err)
	}
	if result.Type != typeName {
		t.Errorf("Expected %s, got %s", typeName, result.Type)
	}
}

func TestDetectPrefersPreferredType(t *testing.T) {
	a := uniqueTestType("prefer-a")
	b := uniqueTestType("prefer-b")
	Register(a, newMockDriver(a))
	Register(b, newMockDriver(b))

	dir := t.TempDir()
	for _, typ := range []Type{a, b} {
		if err := os.Mkdir(filepath.Join(dir, "."+string(typ)), 0755); err != nil {
			t.Fatal(err)
		}
	}

	result, err := Detect(dir, b)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if result.Type != b {
		t.Errorf("Expected preferred type %s, got %s", b, result.Type)
	}
}

func TestLogOperations(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"1", true},
		{"true", true},
		{"yes", true},
		{"off", false},
		{"garbage", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("AFJ_VCS_LOG", tt.value)
			if got := LogOperations(); got != tt.want {
				t.Errorf("LogOperations() with %q = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
