// Package journal keeps a local SQLite log of every edit persisted to disk,
// so a session's history survives crashes and can be audited afterwards.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry records one applied replacement.
type Entry struct {
	ID        int64
	FilePath  string
	ItemName  string
	LineStart int
	LineEnd   int
	LineDelta int
	Operation string // "save" or "reorder"
	AppliedAt time.Time
}

type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	j := &Journal{db: db}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return j, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS edits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file_path TEXT NOT NULL,
			item_name TEXT NOT NULL,
			line_start INTEGER NOT NULL,
			line_end INTEGER NOT NULL,
			line_delta INTEGER NOT NULL,
			operation TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_edits_file ON edits(file_path);`,
	}

	for _, q := range queries {
		if _, err := j.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// Record appends one entry. AppliedAt defaults to now when zero.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	when := e.AppliedAt
	if when.IsZero() {
		when = time.Now().UTC()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO edits (file_path, item_name, line_start, line_end, line_delta, operation, applied_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.FilePath, e.ItemName, e.LineStart, e.LineEnd, e.LineDelta, e.Operation, when)
	return err
}

// Entries returns the full log, oldest first.
func (j *Journal) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, file_path, item_name, line_start, line_end, line_delta, operation, applied_at
		FROM edits ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.FilePath, &e.ItemName, &e.LineStart, &e.LineEnd, &e.LineDelta, &e.Operation, &e.AppliedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
