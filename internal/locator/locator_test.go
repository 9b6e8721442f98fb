package locator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func newMemLocator(t *testing.T, workDir string, dirs ...string) *Locator {
	t.Helper()

	fs := afero.NewMemMapFs()
	for _, d := range dirs {
		if err := fs.MkdirAll(d, 0755); err != nil {
			t.Fatalf("failed to create %s: %v", d, err)
		}
	}
	return &Locator{Fs: fs, WorkDir: workDir}
}

func TestLocateFindsNearestRoot(t *testing.T) {
	tests := []struct {
		name  string
		dirs  []string
		start string
		want  string
	}{
		{
			name:  "root in start directory",
			dirs:  []string{"/proj/.afj", "/proj/src"},
			start: "/proj",
			want:  "/proj/.afj",
		},
		{
			name:  "root in ancestor",
			dirs:  []string{"/proj/.afj", "/proj/src/pkg"},
			start: "/proj/src/pkg",
			want:  "/proj/.afj",
		},
		{
			name:  "nearest wins over outer",
			dirs:  []string{"/proj/.afj", "/proj/sub/.afj", "/proj/sub/deep"},
			start: "/proj/sub/deep",
			want:  "/proj/sub/.afj",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newMemLocator(t, "/elsewhere", tt.dirs...)

			got, err := l.Locate(tt.start)
			if err != nil {
				t.Fatalf("Locate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Locate() = %q, want %q", got, tt.want)
			}

			if ok, _ := afero.DirExists(l.Fs, "/elsewhere/.afj"); ok {
				t.Error("Locate() created a fallback root although one existed")
			}
		})
	}
}

func TestLocateCreatesFallbackOnce(t *testing.T) {
	l := newMemLocator(t, "/work", "/work", "/data/files")

	first, err := l.Locate("/data/files")
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if first != "/work/.afj" {
		t.Errorf("Locate() = %q, want /work/.afj", first)
	}

	second, err := l.Locate("/data/files")
	if err != nil {
		t.Fatalf("second Locate() error = %v", err)
	}
	if second != first {
		t.Errorf("second Locate() = %q, want %q", second, first)
	}

	matches, err := afero.Glob(l.Fs, "/*/.afj")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Errorf("expected exactly one root, found %v", matches)
	}
}

func TestLocateIgnoresFileNamedLikeRoot(t *testing.T) {
	l := newMemLocator(t, "/work", "/proj", "/work")
	if err := afero.WriteFile(l.Fs, "/proj/.afj", []byte("not a dir"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := l.Locate("/proj")
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if got != "/work/.afj" {
		t.Errorf("Locate() = %q, want fallback /work/.afj", got)
	}
}

func TestLocateRelativeStart(t *testing.T) {
	l := newMemLocator(t, "/proj", "/proj/.afj", "/proj/src")

	got, err := l.Locate("src")
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if got != "/proj/.afj" {
		t.Errorf("Locate(relative) = %q, want /proj/.afj", got)
	}
}

func TestLocateCreateFailure(t *testing.T) {
	base := afero.NewMemMapFs()
	if err := base.MkdirAll("/work", 0755); err != nil {
		t.Fatal(err)
	}
	l := &Locator{Fs: afero.NewReadOnlyFs(base), WorkDir: "/work"}

	_, err := l.Locate("/work")
	if !errors.Is(err, ErrCreateRoot) {
		t.Errorf("Locate() error = %v, want ErrCreateRoot", err)
	}
}

func TestFindNeverCreates(t *testing.T) {
	l := newMemLocator(t, "/work", "/work", "/data")

	if _, err := l.Find("/data"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find() error = %v, want ErrNotFound", err)
	}
	if ok, _ := afero.DirExists(l.Fs, "/work/.afj"); ok {
		t.Error("Find() must not create a root")
	}
}

func TestLocateOnDisk(t *testing.T) {
	work := t.TempDir()
	project := filepath.Join(t.TempDir(), "project", "src")
	if err := os.MkdirAll(project, 0755); err != nil {
		t.Fatal(err)
	}

	l := &Locator{Fs: afero.NewOsFs(), WorkDir: work}
	root, err := l.Locate(project)
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}

	if filepath.Base(root) != DirName {
		t.Errorf("Locate() = %q, want a %s directory", root, DirName)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		t.Errorf("root %s was not created: %v", root, err)
	}
}
