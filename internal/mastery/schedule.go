package mastery

import (
	"time"

	"github.com/verte-zerg/mojido/internal/model"
)

// Performance grades a single answer for scheduling.
type Performance int

// Answer grades.
const (
	Good Performance = iota // correct without a hint
	OK                      // correct with a hint
	Bad                     // wrong
)

func (p Performance) String() string {
	switch p {
	case Good:
		return "good"
	case OK:
		return "ok"
	default:
		return "bad"
	}
}

// PerformanceOf grades an answer.
func PerformanceOf(correct, hintUsed bool) Performance {
	switch {
	case !correct:
		return Bad
	case hintUsed:
		return OK
	default:
		return Good
	}
}

// intervals holds review delays per level, indexed by Performance.
var intervals = map[model.Level][3]time.Duration{
	model.LevelNew:       {5 * time.Minute, 2 * time.Minute, 1 * time.Minute},
	model.LevelLearning:  {30 * time.Minute, 10 * time.Minute, 5 * time.Minute},
	model.LevelReviewing: {24 * time.Hour, 4 * time.Hour, 1 * time.Hour},
	model.LevelMastered:  {72 * time.Hour, 24 * time.Hour, 4 * time.Hour},
}

// Interval returns the review delay for a level and grade.
// Unknown levels use the new-level row.
func Interval(level model.Level, perf Performance) time.Duration {
	row, ok := intervals[level]
	if !ok {
		row = intervals[model.LevelNew]
	}
	if perf < Good || perf > Bad {
		perf = Bad
	}
	return row[perf]
}

// NextDue returns when a unit should next be reviewed.
func NextDue(level model.Level, perf Performance, now time.Time) time.Time {
	return now.Add(Interval(level, perf))
}

// IsDue reports whether a scheduled review has come due.
func IsDue(stats model.CharacterMastery, now time.Time) bool {
	return !stats.NextReview.IsZero() && !stats.NextReview.Time().After(now)
}
