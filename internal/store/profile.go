package store

import (
	"context"
	"time"

	"github.com/verte-zerg/mojido/internal/model"
)

// LoadProfile returns the learner profile, creating it with defaults on first use.
func (s *Store) LoadProfile(ctx context.Context) (model.UserProfile, error) {
	return loadProfile(ctx, s.db, time.Now())
}

func loadProfile(ctx context.Context, q querier, now time.Time) (model.UserProfile, error) {
	def := model.DefaultProfile()
	at := model.MillisOf(now)
	if _, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_profile (id, current_difficulty, speed_baseline_ms, created_at, updated_at)
		 VALUES (1, ?, ?, ?, ?)`,
		def.CurrentDifficulty, def.SpeedBaselineMs, at, at,
	); err != nil {
		return model.UserProfile{}, err
	}

	var p model.UserProfile
	err := q.QueryRowContext(ctx,
		`SELECT overall_skill, current_difficulty, speed_baseline_ms, consecutive_perfect,
			consecutive_struggle, total_practice_ms, chars_typed_total, created_at, updated_at
		 FROM user_profile WHERE id = 1`,
	).Scan(
		&p.OverallSkill,
		&p.CurrentDifficulty,
		&p.SpeedBaselineMs,
		&p.ConsecutivePerfect,
		&p.ConsecutiveStruggle,
		&p.TotalPracticeMs,
		&p.CharsTypedTotal,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return model.UserProfile{}, err
	}
	return p, nil
}

// SaveProfile writes every mutable profile field and bumps updated_at.
func (s *Store) SaveProfile(ctx context.Context, p model.UserProfile) error {
	if _, err := loadProfile(ctx, s.db, time.Now()); err != nil {
		return err
	}
	return saveProfile(ctx, s.db, p, time.Now())
}

func saveProfile(ctx context.Context, q querier, p model.UserProfile, now time.Time) error {
	_, err := q.ExecContext(ctx,
		`UPDATE user_profile SET
			overall_skill = ?,
			current_difficulty = ?,
			speed_baseline_ms = ?,
			consecutive_perfect = ?,
			consecutive_struggle = ?,
			total_practice_ms = ?,
			chars_typed_total = ?,
			updated_at = ?
		 WHERE id = 1`,
		p.OverallSkill,
		p.CurrentDifficulty,
		p.SpeedBaselineMs,
		p.ConsecutivePerfect,
		p.ConsecutiveStruggle,
		p.TotalPracticeMs,
		p.CharsTypedTotal,
		model.MillisOf(now),
	)
	return err
}
