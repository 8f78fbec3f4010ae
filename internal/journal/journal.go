// Package journal keeps a small sqlite record of conversion outcomes so
// repeated batch runs can be audited after the fact.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_path TEXT NOT NULL,
	title TEXT NOT NULL,
	newsletter_type TEXT NOT NULL,
	output_path TEXT,
	format TEXT,
	ok INTEGER NOT NULL,
	error TEXT,
	converted_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversions_converted_at ON conversions(converted_at);
`

// Entry is one recorded conversion outcome.
type Entry struct {
	ID             int64
	SourcePath     string
	Title          string
	NewsletterType string
	OutputPath     string
	Format         string
	OK             bool
	Error          string
	ConvertedAt    time.Time
}

// Journal wraps the sqlite store.
type Journal struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the journal database at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Record appends one outcome. The timestamp is set here so callers cannot
// write entries out of order.
func (j *Journal) Record(e *Entry) error {
	_, err := j.db.Exec(
		`INSERT INTO conversions
		 (source_path, title, newsletter_type, output_path, format, ok, error, converted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SourcePath, e.Title, e.NewsletterType, e.OutputPath, e.Format, e.OK, e.Error, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording conversion: %w", err)
	}
	return nil
}

// Recent returns the latest n entries, newest first.
func (j *Journal) Recent(n int) ([]Entry, error) {
	rows, err := j.db.Query(
		`SELECT id, source_path, title, newsletter_type, output_path, format, ok, error, converted_at
		 FROM conversions ORDER BY converted_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SourcePath, &e.Title, &e.NewsletterType,
			&e.OutputPath, &e.Format, &e.OK, &e.Error, &e.ConvertedAt); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the underlying database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}
