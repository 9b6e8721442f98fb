// Package index keeps a small sqlite catalogue of the tracked files under a
// metadata root.
//
// Records are keyed by base name only, so two different files that share a
// name would silently share one history. The index remembers which source
// path first claimed each name and refuses a second owner unless collisions
// are explicitly allowed. It also backs the `ls` command.
//
// Architecture:
//   - Database file: <root>/.afj-state/index.db
//   - WAL mode with a busy timeout, so concurrent afj processes wait
//     instead of failing
//   - Schema: a single records table
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/adamlabadorf/afj/internal/locator"
)

// FileName is the index database file name inside the state directory.
const FileName = "index.db"

// Index wraps the sqlite connection.
type Index struct {
	conn *sql.DB
	path string
}

// Entry describes one tracked file.
type Entry struct {
	Name       string    `json:"name" yaml:"name"`
	SourcePath string    `json:"source_path" yaml:"source_path"`
	Engine     string    `json:"engine" yaml:"engine"`
	Versions   int       `json:"versions" yaml:"versions"`
	LastCommit string    `json:"last_commit" yaml:"last_commit"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at"`
}

// PathFor returns the index location for a metadata root.
func PathFor(root string) string {
	return locator.StatePath(root, FileName)
}

// OpenRoot opens (creating if needed) the index of a metadata root.
func OpenRoot(ctx context.Context, root string) (*Index, error) {
	return Open(ctx, PathFor(root))
}

// Open creates a new database connection at the specified path and makes
// sure the schema exists.
//
// The caller MUST call Close() when done.
//
// Example:
//
//	idx, err := index.Open(ctx, ".afj/.afj-state/index.db")
//	if err != nil {
//	    return err
//	}
//	defer idx.Close()
func Open(ctx context.Context, path string) (*Index, error) {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping index: %w", err)
	}

	// One writer at a time keeps sqlite happy; afj runs one command per process
	conn.SetMaxOpenConns(1)

	idx := &Index{conn: conn, path: path}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := conn.ExecContext(ctx, p); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	if err := idx.InitSchemaContext(ctx); err != nil {
		_ = idx.Close()
		return nil, err
	}

	return idx, nil
}

// Path returns the database file path.
func (idx *Index) Path() string {
	return idx.path
}

// Close closes the database connection.
// Performs a WAL checkpoint to ensure all changes are persisted.
func (idx *Index) Close() error {
	if idx.conn == nil {
		return nil
	}

	// Checkpoint WAL before closing; failure only leaves the -wal file behind
	_, _ = idx.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)")

	if err := idx.conn.Close(); err != nil {
		return fmt.Errorf("failed to close index: %w", err)
	}

	idx.conn = nil
	return nil
}

// InitSchemaContext creates the schema if it doesn't exist. Idempotent.
func (idx *Index) InitSchemaContext(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		name TEXT PRIMARY KEY,
		source_path TEXT NOT NULL,
		engine TEXT NOT NULL,
		versions INTEGER NOT NULL DEFAULT 0,
		last_commit TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_source ON records(source_path);
	`

	if _, err := idx.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize index schema: %w", err)
	}

	return nil
}

// Claim registers sourcePath as the owner of name.
//
// A first claim inserts the record. A repeated claim by the same source is
// a no-op. A claim by a different source fails with a *CollisionError
// (matching ErrNameCollision) unless allowCollision is set, in which case
// ownership moves to the new source.
func (idx *Index) Claim(ctx context.Context, name, sourcePath, engine string, allowCollision bool) (*Entry, error) {
	existing, err := idx.Get(ctx, name)
	switch {
	case errors.Is(err, ErrNotTracked):
		now := time.Now().UTC()
		_, err := idx.conn.ExecContext(ctx, `
		INSERT INTO records (name, source_path, engine, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING`,
			name, sourcePath, engine, formatTime(now), formatTime(now))
		if err != nil {
			return nil, fmt.Errorf("failed to claim %s: %w", name, err)
		}
		return idx.Get(ctx, name)

	case err != nil:
		return nil, err
	}

	if existing.SourcePath == sourcePath {
		return existing, nil
	}

	if !allowCollision {
		return nil, &CollisionError{Name: name, Owner: existing.SourcePath, Claimant: sourcePath}
	}

	_, err = idx.conn.ExecContext(ctx, `
	UPDATE records SET source_path = ?, updated_at = ? WHERE name = ?`,
		sourcePath, formatTime(time.Now().UTC()), name)
	if err != nil {
		return nil, fmt.Errorf("failed to reassign %s: %w", name, err)
	}
	return idx.Get(ctx, name)
}

// RecordVersion notes a new version of name committed as commit.
func (idx *Index) RecordVersion(ctx context.Context, name, commit string) error {
	return idx.bump(ctx, name, commit, 1)
}

// RecordRevert notes that name moved back to commit.
func (idx *Index) RecordRevert(ctx context.Context, name, commit string) error {
	return idx.bump(ctx, name, commit, -1)
}

func (idx *Index) bump(ctx context.Context, name, commit string, delta int) error {
	res, err := idx.conn.ExecContext(ctx, `
	UPDATE records
	SET versions = MAX(versions + ?, 0), last_commit = ?, updated_at = ?
	WHERE name = ?`,
		delta, commit, formatTime(time.Now().UTC()), name)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", name, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotTracked, name)
	}
	return nil
}

// Get returns the entry for name, or ErrNotTracked.
func (idx *Index) Get(ctx context.Context, name string) (*Entry, error) {
	row := idx.conn.QueryRowContext(ctx, `
	SELECT name, source_path, engine, versions, last_commit, created_at, updated_at
	FROM records WHERE name = ?`, name)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotTracked, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return e, nil
}

// List returns every tracked file, ordered by name.
func (idx *Index) List(ctx context.Context) ([]Entry, error) {
	rows, err := idx.conn.QueryContext(ctx, `
	SELECT name, source_path, engine, versions, last_commit, created_at, updated_at
	FROM records ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		e                  Entry
		created, updated string
	)
	if err := s.Scan(&e.Name, &e.SourcePath, &e.Engine, &e.Versions, &e.LastCommit, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if e.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &e, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
