// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/mojido/internal/kana"
	"github.com/verte-zerg/mojido/internal/model"
	"github.com/verte-zerg/mojido/internal/store"
)

const defaultCurveUnits = 5

// Report contains precomputed data for stats rendering.
type Report struct {
	Now          time.Time
	Profile      model.UserProfile
	Mastery      []model.CharacterMastery
	AllMastery   []model.CharacterMastery
	DueCount     int
	DayStreak    int
	LastSession  model.SessionRecord
	HasLast      bool
	Sessions     []model.SessionRecord
	CurveUnits   []string
	UnitSessions map[int64]map[string]model.UnitAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig, now time.Time) (Report, error) {
	level, err := parseLevelFilter(cfg.Level)
	if err != nil {
		return Report{}, err
	}

	profile, err := st.LoadProfile(ctx)
	if err != nil {
		return Report{}, err
	}
	all, err := st.AllMastery(ctx)
	if err != nil {
		return Report{}, err
	}
	due, err := st.DueForReview(ctx, now)
	if err != nil {
		return Report{}, err
	}
	streak, err := st.DayStreak(ctx, model.DateOf(now))
	if err != nil {
		return Report{}, err
	}
	last, hasLast, err := st.LastSession(ctx)
	if err != nil {
		return Report{}, err
	}
	sessions, err := st.ListSessions(ctx, cfg.Last)
	if err != nil {
		return Report{}, err
	}

	units := parseUnits(cfg.Units)
	if len(units) == 0 {
		units = MostPracticed(all, defaultCurveUnits)
	}
	perSession, err := st.UnitStatsForSessions(ctx, sessionIDs(sessions), units)
	if err != nil {
		return Report{}, err
	}

	rows := all
	if cfg.Due {
		rows = due
	}
	return Report{
		Now:          now,
		Profile:      profile,
		Mastery:      FilterMastery(rows, level),
		AllMastery:   all,
		DueCount:     len(due),
		DayStreak:    streak,
		LastSession:  last,
		HasLast:      hasLast,
		Sessions:     sessions,
		CurveUnits:   units,
		UnitSessions: perSession,
	}, nil
}

// FilterMastery keeps rows at the given level, or every row when level is empty.
func FilterMastery(rows []model.CharacterMastery, level model.Level) []model.CharacterMastery {
	out := make([]model.CharacterMastery, 0, len(rows))
	for _, m := range rows {
		if level == "" || m.Level == level {
			out = append(out, m)
		}
	}
	return out
}

func parseLevelFilter(raw string) (model.Level, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == "all" {
		return "", nil
	}
	switch level := model.Level(raw); level {
	case model.LevelNew, model.LevelLearning, model.LevelReviewing, model.LevelMastered:
		return level, nil
	default:
		return "", fmt.Errorf("unknown level %q (want new, learning, reviewing or mastered)", raw)
	}
}

func parseUnits(raw string) []string {
	var units []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			units = append(units, kana.ToHiragana(part))
		}
	}
	return units
}

func sessionIDs(sessions []model.SessionRecord) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	return ids
}
