package store

import (
	"context"
	"time"

	"github.com/verte-zerg/mojido/internal/model"
)

// RecordSentenceShown adds a history row and returns its id.
func (s *Store) RecordSentenceShown(ctx context.Context, sentenceID string, sessionID int64, difficulty float64, at time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sentence_history (sentence_id, session_id, difficulty_at_time, shown_at) VALUES (?, ?, ?, ?)`,
		sentenceID, sessionID, difficulty, model.MillisOf(at),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateSentenceCompletion stores the outcome of a shown sentence.
func (s *Store) UpdateSentenceCompletion(ctx context.Context, historyID int64, result model.SentenceResult, at time.Time) error {
	return updateSentenceCompletion(ctx, s.db, historyID, result, at)
}

func updateSentenceCompletion(ctx context.Context, q querier, historyID int64, result model.SentenceResult, at time.Time) error {
	_, err := q.ExecContext(ctx,
		`UPDATE sentence_history SET accuracy = ?, avg_time_ms = ?, hints_used = ?, completed_at = ? WHERE id = ?`,
		result.Accuracy, result.AvgTimeMs, result.HintsUsed, model.MillisOf(at), historyID,
	)
	return err
}

// RecentSentenceIDs returns ids of the last shown sentences, newest first.
func (s *Store) RecentSentenceIDs(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT sentence_id FROM sentence_history ORDER BY shown_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
