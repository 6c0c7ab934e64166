// Package history records finished automation runs in a local sqlite
// database.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Record is one finished run.
type Record struct {
	RunID      string
	Trigger    string // "network" or "manual"
	Network    string
	Outcome    string // "completed" or "failed"
	Host       string
	Port       int
	Error      string
	Attempts   int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Store persists run records.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id      TEXT NOT NULL,
		trigger_by  TEXT NOT NULL,
		network     TEXT NOT NULL,
		outcome     TEXT NOT NULL,
		host        TEXT NOT NULL DEFAULT '',
		port        INTEGER NOT NULL DEFAULT 0,
		error       TEXT NOT NULL DEFAULT '',
		attempts    INTEGER NOT NULL DEFAULT 1,
		started_ms  INTEGER NOT NULL,
		finished_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_ms DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Record inserts one run.
func (s *Store) Record(r Record) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, trigger_by, network, outcome, host, port, error, attempts, started_ms, finished_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Trigger, r.Network, r.Outcome, r.Host, r.Port, r.Error, r.Attempts,
		r.StartedAt.UnixMilli(), r.FinishedAt.UnixMilli(),
	)
	return err
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT run_id, trigger_by, network, outcome, host, port, error, attempts, started_ms, finished_ms
		 FROM runs ORDER BY started_ms DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var started, finished int64
		if err := rows.Scan(&r.RunID, &r.Trigger, &r.Network, &r.Outcome, &r.Host, &r.Port,
			&r.Error, &r.Attempts, &started, &finished); err != nil {
			return nil, err
		}
		r.StartedAt = time.UnixMilli(started)
		r.FinishedAt = time.UnixMilli(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
