// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for learner data.
type Store struct {
	db *sql.DB
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One learner, one writer.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA synchronous = NORMAL;`,
		`CREATE TABLE IF NOT EXISTS progress (
			character TEXT PRIMARY KEY,
			correct INTEGER NOT NULL DEFAULT 0,
			incorrect INTEGER NOT NULL DEFAULT 0,
			hint_shown INTEGER NOT NULL DEFAULT 0,
			hint_used INTEGER NOT NULL DEFAULT 0,
			total_time_ms INTEGER NOT NULL DEFAULT 0,
			attempt_count INTEGER NOT NULL DEFAULT 0,
			best_time_ms INTEGER,
			recent_times TEXT NOT NULL DEFAULT '[]',
			mastery_score REAL NOT NULL DEFAULT 0,
			level TEXT NOT NULL DEFAULT 'new',
			last_seen INTEGER,
			next_review_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS user_profile (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			overall_skill REAL NOT NULL DEFAULT 0,
			current_difficulty REAL NOT NULL DEFAULT 1.0,
			speed_baseline_ms REAL NOT NULL DEFAULT 1000,
			consecutive_perfect INTEGER NOT NULL DEFAULT 0,
			consecutive_struggle INTEGER NOT NULL DEFAULT 0,
			total_practice_ms INTEGER NOT NULL DEFAULT 0,
			chars_typed_total INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			token TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			ended_at INTEGER,
			total_chars INTEGER NOT NULL DEFAULT 0,
			correct_chars INTEGER NOT NULL DEFAULT 0,
			max_streak INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS attempt_log (
			id INTEGER PRIMARY KEY,
			session_id INTEGER NOT NULL,
			sentence_id TEXT NOT NULL,
			character TEXT NOT NULL,
			correct INTEGER NOT NULL,
			time_ms INTEGER,
			hint_used INTEGER NOT NULL DEFAULT 0,
			typed_wrong TEXT,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sentence_history (
			id INTEGER PRIMARY KEY,
			sentence_id TEXT NOT NULL,
			session_id INTEGER NOT NULL,
			difficulty_at_time REAL NOT NULL,
			shown_at INTEGER NOT NULL,
			completed_at INTEGER,
			accuracy REAL,
			avg_time_ms REAL,
			hints_used INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS daily_activity (
			date TEXT PRIMARY KEY,
			sentences_completed INTEGER NOT NULL DEFAULT 0,
			first_sentence_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_progress_next_review ON progress(next_review_at);`,
		`CREATE INDEX IF NOT EXISTS idx_attempt_log_session ON attempt_log(session_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sentence_history_shown ON sentence_history(shown_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

// withTx runs fn in a transaction, rolling back when fn fails.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func closeRows(rows *sql.Rows) {
	if cerr := rows.Close(); cerr != nil {
		// Best-effort rows close.
		_ = cerr
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullMillis(v sql.NullInt64) int64 {
	if !v.Valid {
		return 0
	}
	return v.Int64
}

func millisArg(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}
