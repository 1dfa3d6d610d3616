package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/verte-zerg/mojido/internal/model"
)

// CompleteSentence persists a finished sentence in one transaction: the
// updated unit stats, the profile, the history row and the day's activity.
// Nothing is written when any step fails.
func (s *Store) CompleteSentence(ctx context.Context, c model.Completion) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, m := range c.Mastery {
			if err := upsertMastery(ctx, tx, m); err != nil {
				return fmt.Errorf("failed to update mastery for %q: %w", m.Char, err)
			}
		}
		if _, err := loadProfile(ctx, tx, c.At); err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		if err := saveProfile(ctx, tx, c.Profile, c.At); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
		if c.HistoryID > 0 {
			if err := updateSentenceCompletion(ctx, tx, c.HistoryID, c.Result, c.At); err != nil {
				return fmt.Errorf("failed to update sentence history: %w", err)
			}
		}
		if _, err := recordSentenceCompleted(ctx, tx, c.Day, c.At); err != nil {
			return fmt.Errorf("failed to record daily activity: %w", err)
		}
		return nil
	})
}
