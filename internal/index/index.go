// ABOUTME: SQLite-backed metadata index over vault notes.
// ABOUTME: Stores titles and tags extracted from markdown for tag search.

package index

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/admjs/obsidian-mcp/internal/vault"
)

// Index maintains note metadata in SQLite. It is a lookup collaborator
// for tag search and vault statistics; full-text search does not use it.
type Index struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the index database at path. Use ":memory:" for
// an ephemeral index. The schema is created if it doesn't exist.
func Open(path string, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default().With("component", "index")
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	// The pool must stay a single connection: a :memory: database exists
	// per connection, and the pragmas below are per-connection settings.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	ix := &Index{db: db, logger: logger}
	if err := ix.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index schema: %w", err)
	}

	logger.Info("metadata index opened", "path", path)
	return ix, nil
}

func (ix *Index) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS notes (
			path TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			indexed_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS note_tags (
			path TEXT NOT NULL,
			tag TEXT NOT NULL,
			PRIMARY KEY (path, tag),
			FOREIGN KEY (path) REFERENCES notes(path) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_note_tags_tag
			ON note_tags(tag);
	`
	_, err := ix.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// IndexNote parses content and upserts the note's metadata.
func (ix *Index) IndexNote(ctx context.Context, path, content string) error {
	meta := extractMetadata([]byte(content))

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning index transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO notes (path, title, indexed_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(path) DO UPDATE SET title = excluded.title, indexed_at = excluded.indexed_at`,
		path, meta.Title,
	); err != nil {
		return fmt.Errorf("upserting note %s: %w", path, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM note_tags WHERE path = ?`, path); err != nil {
		return fmt.Errorf("clearing tags for %s: %w", path, err)
	}
	for _, tag := range meta.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO note_tags (path, tag) VALUES (?, ?)`,
			path, tag,
		); err != nil {
			return fmt.Errorf("inserting tag %s for %s: %w", tag, path, err)
		}
	}

	return tx.Commit()
}

// RemoveNote drops the note and its tags from the index.
func (ix *Index) RemoveNote(ctx context.Context, path string) error {
	if _, err := ix.db.ExecContext(ctx, `DELETE FROM notes WHERE path = ?`, path); err != nil {
		return fmt.Errorf("removing %s from index: %w", path, err)
	}
	return nil
}

// Rebuild re-indexes every markdown note in the vault. A note that fails
// to read is logged and skipped.
func (ix *Index) Rebuild(ctx context.Context, v *vault.Vault) error {
	notes, err := v.ListNotes()
	if err != nil {
		return fmt.Errorf("listing notes for rebuild: %w", err)
	}

	if _, err := ix.db.ExecContext(ctx, `DELETE FROM notes`); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}

	indexed := 0
	for _, path := range notes {
		content, err := v.CachedRead(path)
		if err != nil {
			ix.logger.Warn("skipping unreadable note during rebuild", "path", path, "error", err)
			continue
		}
		if err := ix.IndexNote(ctx, path, content); err != nil {
			return err
		}
		indexed++
	}

	ix.logger.Info("index rebuilt", "notes", indexed, "skipped", len(notes)-indexed)
	return nil
}

// NotesWithTag returns the paths of notes carrying the tag, sorted by path.
// The leading '#' is optional.
func (ix *Index) NotesWithTag(ctx context.Context, tag string) ([]string, error) {
	tag = normalizeTag(tag)

	rows, err := ix.db.QueryContext(ctx,
		`SELECT path FROM note_tags WHERE tag = ? ORDER BY path`, tag)
	if err != nil {
		return nil, fmt.Errorf("querying tag %s: %w", tag, err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning tag row: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Stats summarizes the indexed vault.
type Stats struct {
	NoteCount int            `json:"note_count"`
	TagCount  int            `json:"tag_count"`
	TopTags   map[string]int `json:"top_tags,omitempty"`
}

// Stats returns note and distinct tag counts plus per-tag note counts.
func (ix *Index) Stats(ctx context.Context) (*Stats, error) {
	s := &Stats{TopTags: make(map[string]int)}

	if err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&s.NoteCount); err != nil {
		return nil, fmt.Errorf("counting notes: %w", err)
	}
	if err := ix.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT tag) FROM note_tags`).Scan(&s.TagCount); err != nil {
		return nil, fmt.Errorf("counting tags: %w", err)
	}

	rows, err := ix.db.QueryContext(ctx,
		`SELECT tag, COUNT(*) FROM note_tags GROUP BY tag ORDER BY COUNT(*) DESC, tag LIMIT 20`)
	if err != nil {
		return nil, fmt.Errorf("querying top tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tag string
		var count int
		if err := rows.Scan(&tag, &count); err != nil {
			return nil, fmt.Errorf("scanning top tag row: %w", err)
		}
		s.TopTags[tag] = count
	}
	return s, rows.Err()
}
