// Package journal keeps an append-only SQLite record of agent runs and their
// attempts. It is an audit trail: nothing ever reads it to coordinate or
// influence a later run.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"stolik/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	outcome         TEXT NOT NULL,
	confirmation_id TEXT NOT NULL DEFAULT '',
	started_at      TIMESTAMP NOT NULL,
	finished_at     TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS attempts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	venue      TEXT NOT NULL,
	evening    TIMESTAMP NOT NULL,
	slot_start TEXT NOT NULL DEFAULT '',
	outcome    TEXT NOT NULL,
	detail     TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
`

type Journal struct {
	db *sql.DB
}

func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// RecordRun writes one run and all of its attempts in a single transaction.
func (j *Journal) RecordRun(ctx context.Context, runID string, outcome models.Outcome, confirmationID string, started, finished time.Time, attempts []models.BookingAttempt) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, outcome, confirmation_id, started_at, finished_at) VALUES (?, ?, ?, ?, ?)`,
		runID, string(outcome), confirmationID, started, finished)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	for _, a := range attempts {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO attempts (run_id, venue, evening, slot_start, outcome, detail, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, a.Venue.Name, a.Evening, a.Slot.Start, string(a.Outcome), a.Detail, a.At)
		if err != nil {
			return fmt.Errorf("record attempt: %w", err)
		}
	}

	return tx.Commit()
}
