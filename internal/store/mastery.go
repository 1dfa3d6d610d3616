package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/mojido/internal/model"
)

const masteryColumns = `character, correct, incorrect, hint_shown, hint_used, total_time_ms,
	attempt_count, best_time_ms, recent_times, mastery_score, level, last_seen, next_review_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMastery(row rowScanner) (model.CharacterMastery, error) {
	var (
		m        model.CharacterMastery
		best     sql.NullInt64
		recent   string
		level    string
		lastSeen sql.NullInt64
		nextDue  sql.NullInt64
	)
	if err := row.Scan(
		&m.Char,
		&m.Correct,
		&m.Incorrect,
		&m.HintShown,
		&m.HintUsed,
		&m.TotalTimeMs,
		&m.AttemptCount,
		&best,
		&recent,
		&m.MasteryScore,
		&level,
		&lastSeen,
		&nextDue,
	); err != nil {
		return model.CharacterMastery{}, err
	}
	if best.Valid {
		v := best.Int64
		m.BestTimeMs = &v
	}
	if recent != "" {
		if err := json.Unmarshal([]byte(recent), &m.RecentTimes); err != nil {
			return model.CharacterMastery{}, fmt.Errorf("failed to decode recent times for %q: %w", m.Char, err)
		}
	}
	m.Level = model.ParseLevel(level)
	m.LastSeen = model.Millis(nullMillis(lastSeen))
	m.NextReview = model.Millis(nullMillis(nextDue))
	return m, nil
}

// GetMastery returns the stats for one unit. ok is false when the unit was never typed.
func (s *Store) GetMastery(ctx context.Context, char string) (m model.CharacterMastery, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+masteryColumns+` FROM progress WHERE character = ?`, char)
	m, err = scanMastery(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CharacterMastery{Char: char, Level: model.LevelNew}, false, nil
	}
	if err != nil {
		return model.CharacterMastery{}, false, err
	}
	return m, true, nil
}

// AllMastery returns every tracked unit ordered by character.
func (s *Store) AllMastery(ctx context.Context) ([]model.CharacterMastery, error) {
	return s.listMastery(ctx, `SELECT `+masteryColumns+` FROM progress ORDER BY character`)
}

// DueForReview returns units whose review time has passed, oldest first.
func (s *Store) DueForReview(ctx context.Context, now time.Time) ([]model.CharacterMastery, error) {
	return s.listMastery(ctx,
		`SELECT `+masteryColumns+` FROM progress
		 WHERE next_review_at IS NOT NULL AND next_review_at <= ?
		 ORDER BY next_review_at ASC`,
		model.MillisOf(now),
	)
}

func (s *Store) listMastery(ctx context.Context, query string, args ...any) ([]model.CharacterMastery, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var result []model.CharacterMastery
	for rows.Next() {
		m, err := scanMastery(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpsertMastery writes the full stats row for a unit.
func (s *Store) UpsertMastery(ctx context.Context, m model.CharacterMastery) error {
	return upsertMastery(ctx, s.db, m)
}

func upsertMastery(ctx context.Context, q querier, m model.CharacterMastery) error {
	recent := m.RecentTimes
	if recent == nil {
		recent = []int64{}
	}
	encoded, err := json.Marshal(recent)
	if err != nil {
		return err
	}
	var best any
	if m.BestTimeMs != nil {
		best = *m.BestTimeMs
	}
	level := m.Level
	if level == "" {
		level = model.LevelNew
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO progress (`+masteryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(character) DO UPDATE SET
			correct = excluded.correct,
			incorrect = excluded.incorrect,
			hint_shown = excluded.hint_shown,
			hint_used = excluded.hint_used,
			total_time_ms = excluded.total_time_ms,
			attempt_count = excluded.attempt_count,
			best_time_ms = excluded.best_time_ms,
			recent_times = excluded.recent_times,
			mastery_score = excluded.mastery_score,
			level = excluded.level,
			last_seen = excluded.last_seen,
			next_review_at = excluded.next_review_at`,
		m.Char,
		m.Correct,
		m.Incorrect,
		m.HintShown,
		m.HintUsed,
		m.TotalTimeMs,
		m.AttemptCount,
		best,
		string(encoded),
		m.MasteryScore,
		string(level),
		millisArg(int64(m.LastSeen)),
		millisArg(int64(m.NextReview)),
	)
	return err
}
