package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/verte-zerg/mojido/internal/model"
)

// StartSession inserts an open session and returns its id.
func (s *Store) StartSession(ctx context.Context, token string, at time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, started_at, total_chars, correct_chars, max_streak) VALUES (?, ?, 0, 0, 0)`,
		token, model.MillisOf(at),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateSession stores running counters for an open session.
func (s *Store) UpdateSession(ctx context.Context, rec model.SessionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET total_chars = ?, correct_chars = ?, max_streak = ? WHERE id = ?`,
		rec.TotalChars, rec.CorrectChars, rec.MaxStreak, rec.ID,
	)
	return err
}

// EndSession stores final counters and closes the session.
func (s *Store) EndSession(ctx context.Context, rec model.SessionRecord, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET ended_at = ?, total_chars = ?, correct_chars = ?, max_streak = ? WHERE id = ?`,
		model.MillisOf(at), rec.TotalChars, rec.CorrectChars, rec.MaxStreak, rec.ID,
	)
	return err
}

const sessionColumns = `id, token, started_at, ended_at, total_chars, correct_chars, max_streak`

func scanSession(row rowScanner) (model.SessionRecord, error) {
	var rec model.SessionRecord
	var ended sql.NullInt64
	if err := row.Scan(&rec.ID, &rec.Token, &rec.StartedAt, &ended, &rec.TotalChars, &rec.CorrectChars, &rec.MaxStreak); err != nil {
		return model.SessionRecord{}, err
	}
	rec.EndedAt = model.Millis(nullMillis(ended))
	return rec, nil
}

// LastSession returns the most recently ended session that typed anything.
// ok is false when there is none.
func (s *Store) LastSession(ctx context.Context) (rec model.SessionRecord, ok bool, err error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE ended_at IS NOT NULL AND total_chars > 0 ORDER BY ended_at DESC, id DESC LIMIT 1`)
	rec, err = scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SessionRecord{}, false, nil
	}
	if err != nil {
		return model.SessionRecord{}, false, err
	}
	return rec, true, nil
}

// ListSessions returns ended, non-empty sessions oldest first. A positive last
// keeps only the most recent ones.
func (s *Store) ListSessions(ctx context.Context, last int) ([]model.SessionRecord, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE ended_at IS NOT NULL AND total_chars > 0 ORDER BY ended_at ASC, id ASC`
	var args []any
	if last > 0 {
		query = `SELECT * FROM (SELECT ` + sessionColumns + ` FROM sessions WHERE ended_at IS NOT NULL AND total_chars > 0
			ORDER BY ended_at DESC, id DESC LIMIT ?) ORDER BY ended_at ASC, id ASC`
		args = append(args, last)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var sessions []model.SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}
