package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

// SQLite is a Store backed by a single-file SQLite database.
type SQLite struct {
	mu  sync.Mutex
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the workspace database at path and
// runs the schema migration. The parent directory is created if missing.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("state: create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("state: open %s: %w", path, err)
	}
	// WAL keeps the file readable while a write is in flight.
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("state: set wal mode: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db, now: time.Now}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS workspaces (
			workspace   TEXT PRIMARY KEY,
			policy_name TEXT NOT NULL,
			condition   TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("state: migrate: %w", err)
	}
	return nil
}

func (s *SQLite) Put(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workspaces (workspace, policy_name, condition, fingerprint, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(workspace) DO UPDATE SET
			policy_name = excluded.policy_name,
			condition   = excluded.condition,
			fingerprint = excluded.fingerprint,
			updated_at  = excluded.updated_at
	`, rec.Workspace, rec.PolicyName, rec.Condition, rec.Fingerprint, s.now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("state: put %s: %w", rec.Workspace, err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, workspace string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT workspace, policy_name, condition, fingerprint, updated_at
		FROM workspaces WHERE workspace = ?
	`, workspace)

	rec, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("state: get %s: %w", workspace, err)
	}
	return rec, true, nil
}

func (s *SQLite) List(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT workspace, policy_name, condition, fingerprint, updated_at
		FROM workspaces ORDER BY workspace
	`)
	if err != nil {
		return nil, fmt.Errorf("state: list: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("state: list scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("state: list rows: %w", err)
	}
	return out, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// scanRecord reads one row through the given Scan function and parses the
// stored timestamp.
func scanRecord(scan func(...any) error) (Record, error) {
	var rec Record
	var updated string
	if err := scan(&rec.Workspace, &rec.PolicyName, &rec.Condition, &rec.Fingerprint, &updated); err != nil {
		return Record{}, err
	}
	ts, err := time.Parse(timeLayout, updated)
	if err != nil {
		return Record{}, fmt.Errorf("parse updated_at %q: %w", updated, err)
	}
	rec.UpdatedAt = ts
	return rec, nil
}
