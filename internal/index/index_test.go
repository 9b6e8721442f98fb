package index

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// openTestIndex opens an index under a temporary metadata root
func openTestIndex(t *testing.T) *Index {
	t.Helper()

	idx, err := OpenRoot(context.Background(), filepath.Join(t.TempDir(), ".afj"))
	if err != nil {
		t.Fatalf("OpenRoot() failed: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestOpenCreatesSchema(t *testing.T) {
	idx := openTestIndex(t)

	if filepath.Base(idx.Path()) != FileName {
		t.Errorf("Path() = %q, want %s", idx.Path(), FileName)
	}

	var count int
	err := idx.conn.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='records'`).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query schema: %v", err)
	}
	if count != 1 {
		t.Error("records table does not exist")
	}

	// Idempotent
	if err := idx.InitSchemaContext(context.Background()); err != nil {
		t.Errorf("second InitSchemaContext() failed: %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".afj")
	ctx := context.Background()

	idx, err := OpenRoot(ctx, root)
	if err != nil {
		t.Fatalf("OpenRoot() failed: %v", err)
	}
	if _, err := idx.Claim(ctx, "a.go", "/src/a.go", "git", false); err != nil {
		t.Fatalf("Claim() failed: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}

	idx, err = OpenRoot(ctx, root)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer idx.Close()

	e, err := idx.Get(ctx, "a.go")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if e.SourcePath != "/src/a.go" {
		t.Errorf("SourcePath = %q", e.SourcePath)
	}
}

func TestClaim(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	first, err := idx.Claim(ctx, "main.go", "/p/a/main.go", "git", false)
	if err != nil {
		t.Fatalf("Claim() failed: %v", err)
	}
	if first.CreatedAt.IsZero() || first.Engine != "git" {
		t.Errorf("unexpected entry %+v", first)
	}

	again, err := idx.Claim(ctx, "main.go", "/p/a/main.go", "git", false)
	if err != nil {
		t.Fatalf("repeated Claim() failed: %v", err)
	}
	if diff := cmp.Diff(first, again); diff != "" {
		t.Errorf("repeated Claim() changed the entry (-first +again):\n%s", diff)
	}

	_, err = idx.Claim(ctx, "main.go", "/p/b/main.go", "git", false)
	if !errors.Is(err, ErrNameCollision) {
		t.Fatalf("colliding Claim() error = %v, want ErrNameCollision", err)
	}
	var collision *CollisionError
	if !errors.As(err, &collision) {
		t.Fatalf("expected *CollisionError, got %T", err)
	}
	if collision.Owner != "/p/a/main.go" || collision.Claimant != "/p/b/main.go" {
		t.Errorf("unexpected collision %+v", collision)
	}

	moved, err := idx.Claim(ctx, "main.go", "/p/b/main.go", "git", true)
	if err != nil {
		t.Fatalf("allowed colliding Claim() failed: %v", err)
	}
	if moved.SourcePath != "/p/b/main.go" {
		t.Errorf("SourcePath after allowed collision = %q", moved.SourcePath)
	}
}

func TestRecordVersionAndRevert(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	if _, err := idx.Claim(ctx, "a.py", "/p/a.py", "git", false); err != nil {
		t.Fatal(err)
	}

	for _, c := range []string{"c1", "c2", "c3"} {
		if err := idx.RecordVersion(ctx, "a.py", c); err != nil {
			t.Fatalf("RecordVersion(%s) failed: %v", c, err)
		}
	}
	if err := idx.RecordRevert(ctx, "a.py", "c2"); err != nil {
		t.Fatalf("RecordRevert() failed: %v", err)
	}

	e, err := idx.Get(ctx, "a.py")
	if err != nil {
		t.Fatal(err)
	}
	if e.Versions != 2 || e.LastCommit != "c2" {
		t.Errorf("entry = %+v, want 2 versions at c2", e)
	}

	if err := idx.RecordVersion(ctx, "ghost", "c"); !errors.Is(err, ErrNotTracked) {
		t.Errorf("RecordVersion(untracked) error = %v, want ErrNotTracked", err)
	}
}

func TestList(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	for _, name := range []string{"b.txt", "a.txt", "c.txt"} {
		if _, err := idx.Claim(ctx, name, "/p/"+name, "git", false); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := idx.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}

	want := []Entry{
		{Name: "a.txt", SourcePath: "/p/a.txt", Engine: "git"},
		{Name: "b.txt", SourcePath: "/p/b.txt", Engine: "git"},
		{Name: "c.txt", SourcePath: "/p/c.txt", Engine: "git"},
	}
	opts := cmpopts.IgnoreFields(Entry{}, "CreatedAt", "UpdatedAt")
	if diff := cmp.Diff(want, entries, opts); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestGetUntracked(t *testing.T) {
	idx := openTestIndex(t)

	if _, err := idx.Get(context.Background(), "nope"); !errors.Is(err, ErrNotTracked) {
		t.Errorf("Get() error = %v, want ErrNotTracked", err)
	}
}
