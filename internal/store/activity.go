package store

import (
	"context"
	"time"

	"github.com/verte-zerg/mojido/internal/model"
)

// RecordSentenceCompleted counts a finished sentence toward day's activity.
// It reports whether this was the first sentence of that day.
func (s *Store) RecordSentenceCompleted(ctx context.Context, day model.Date, at time.Time) (bool, error) {
	return recordSentenceCompleted(ctx, s.db, day, at)
}

func recordSentenceCompleted(ctx context.Context, q querier, day model.Date, at time.Time) (bool, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO daily_activity (date, sentences_completed, first_sentence_at) VALUES (?, 1, ?)
		 ON CONFLICT(date) DO NOTHING`,
		day.String(), model.MillisOf(at),
	)
	if err != nil {
		return false, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if inserted > 0 {
		return true, nil
	}
	_, err = q.ExecContext(ctx,
		`UPDATE daily_activity SET sentences_completed = sentences_completed + 1 WHERE date = ?`,
		day.String(),
	)
	return false, err
}

// DayStreak counts consecutive practice days ending today, or yesterday when
// today has no activity yet.
func (s *Store) DayStreak(ctx context.Context, today model.Date) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date FROM daily_activity WHERE date <= ? ORDER BY date DESC`, today.String())
	if err != nil {
		return 0, err
	}
	defer closeRows(rows)

	var days []model.Date
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return 0, err
		}
		d, err := model.ParseDate(raw)
		if err != nil {
			return 0, err
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	return streakFrom(days, today), nil
}

// streakFrom counts the run of consecutive days at the head of days, which
// must be sorted newest first.
func streakFrom(days []model.Date, today model.Date) int {
	if len(days) == 0 {
		return 0
	}
	expected := today
	if !days[0].Equal(today) {
		expected = today.AddDays(-1)
		if !days[0].Equal(expected) {
			return 0
		}
	}
	streak := 0
	for _, d := range days {
		if !d.Equal(expected) {
			break
		}
		streak++
		expected = expected.AddDays(-1)
	}
	return streak
}

// ActivityOn returns the activity row for day. ok is false when nothing was practiced.
func (s *Store) ActivityOn(ctx context.Context, day model.Date) (a model.DailyActivity, ok bool, err error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sentences_completed, first_sentence_at FROM daily_activity WHERE date = ?`, day.String())
	if err != nil {
		return model.DailyActivity{}, false, err
	}
	defer closeRows(rows)
	if !rows.Next() {
		return model.DailyActivity{}, false, rows.Err()
	}
	a.Date = day
	if err := rows.Scan(&a.SentencesCompleted, &a.FirstAt); err != nil {
		return model.DailyActivity{}, false, err
	}
	return a, true, nil
}
