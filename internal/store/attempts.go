package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/verte-zerg/mojido/internal/model"
)

// LogAttempt appends one typed unit to the attempt log.
func (s *Store) LogAttempt(ctx context.Context, a model.AttemptLog) (int64, error) {
	var timeMs any
	if a.TimeMs != nil {
		timeMs = *a.TimeMs
	}
	var typedWrong any
	if a.TypedWrong != "" {
		typedWrong = a.TypedWrong
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO attempt_log (session_id, sentence_id, character, correct, time_ms, hint_used, typed_wrong, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.SessionID, a.SentenceID, a.Char, boolInt(a.Correct), timeMs, boolInt(a.HintUsed), typedWrong, a.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// EachAttempt streams attempt-log rows with id greater than afterID, in id order.
func (s *Store) EachAttempt(ctx context.Context, afterID int64, fn func(model.AttemptLog) error) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, sentence_id, character, correct, time_ms, hint_used, typed_wrong, created_at
		 FROM attempt_log WHERE id > ? ORDER BY id ASC`, afterID)
	if err != nil {
		return err
	}
	defer closeRows(rows)

	for rows.Next() {
		var (
			a          model.AttemptLog
			correct    int
			hintUsed   int
			timeMs     sql.NullInt64
			typedWrong sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.SessionID, &a.SentenceID, &a.Char, &correct, &timeMs, &hintUsed, &typedWrong, &a.CreatedAt); err != nil {
			return err
		}
		a.Correct = correct != 0
		a.HintUsed = hintUsed != 0
		if timeMs.Valid {
			v := timeMs.Int64
			a.TimeMs = &v
		}
		a.TypedWrong = typedWrong.String
		if err := fn(a); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ListAttempts returns the attempt log for one session, or every row when
// sessionID is 0.
func (s *Store) ListAttempts(ctx context.Context, sessionID int64) ([]model.AttemptLog, error) {
	var out []model.AttemptLog
	err := s.EachAttempt(ctx, 0, func(a model.AttemptLog) error {
		if sessionID == 0 || a.SessionID == sessionID {
			out = append(out, a)
		}
		return nil
	})
	return out, err
}

// UnitStatsForSessions aggregates the attempt log per session and unit.
// An empty chars list includes every unit.
func (s *Store) UnitStatsForSessions(ctx context.Context, sessionIDs []int64, chars []string) (map[int64]map[string]model.UnitAggregate, error) {
	result := map[int64]map[string]model.UnitAggregate{}
	if len(sessionIDs) == 0 {
		return result, nil
	}
	args := make([]any, 0, len(sessionIDs)+len(chars))
	for _, id := range sessionIDs {
		args = append(args, id)
	}
	clause := fmt.Sprintf("session_id IN (%s)", placeholders(len(sessionIDs)))
	if len(chars) > 0 {
		clause += fmt.Sprintf(" AND character IN (%s)", placeholders(len(chars)))
		for _, ch := range chars {
			args = append(args, ch)
		}
	}

	query := `SELECT session_id, character,
			SUM(correct), SUM(1 - correct),
			COALESCE(SUM(time_ms), 0), COUNT(time_ms)
		FROM attempt_log
		WHERE ` + clause + `
		GROUP BY session_id, character`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	for rows.Next() {
		var sessionID int64
		var agg model.UnitAggregate
		if err := rows.Scan(&sessionID, &agg.Char, &agg.Correct, &agg.Incorrect, &agg.TimeSumMs, &agg.TimeCount); err != nil {
			return nil, err
		}
		if _, ok := result[sessionID]; !ok {
			result[sessionID] = map[string]model.UnitAggregate{}
		}
		result[sessionID][agg.Char] = agg
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
