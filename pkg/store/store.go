// Package store keeps a SQLite index of generated reports so they can be
// listed without scanning the output directory.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Record is one indexed report bundle.
type Record struct {
	ID           string
	CreatedAt    time.Time
	URL          string
	AppName      string
	Dir          string
	ElementCount int
}

// Store wraps the reports database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the reports database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reports index: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		url TEXT NOT NULL,
		app_name TEXT,
		dir TEXT NOT NULL,
		element_count INTEGER NOT NULL DEFAULT 0
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to ensure reports schema: %w", err)
	}
	return nil
}

// Add indexes a report bundle and returns its generated id.
func (s *Store) Add(url, appName, dir string, elementCount int) (string, error) {
	id := uuid.New().String()
	_, err := s.db.Exec(
		`INSERT INTO reports (id, created_at, url, app_name, dir, element_count) VALUES (?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339), url, appName, dir, elementCount,
	)
	if err != nil {
		return "", fmt.Errorf("failed to index report: %w", err)
	}
	return id, nil
}

// List returns indexed reports, newest first, capped at limit. A limit of
// zero or less means no cap.
func (s *Store) List(limit int) ([]Record, error) {
	query := `SELECT id, created_at, url, app_name, dir, element_count FROM reports ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var created string
		var appName sql.NullString
		if err := rows.Scan(&r.ID, &created, &r.URL, &appName, &r.Dir, &r.ElementCount); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		r.AppName = appName.String
		if t, perr := time.Parse(time.RFC3339, created); perr == nil {
			r.CreatedAt = t
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
