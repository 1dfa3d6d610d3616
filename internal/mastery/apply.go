package mastery

import (
	"time"

	"github.com/verte-zerg/mojido/internal/model"
)

// Apply folds one typed answer into a unit's stats and rescores it.
// The score uses the previous last-seen time so a long break still decays
// the result. Every typed answer counts as a shown hint opportunity.
func Apply(stats model.CharacterMastery, timing model.CharTiming, speedBaselineMs float64, now time.Time) model.CharacterMastery {
	next := stats
	next.Char = timing.Char
	if timing.Correct {
		next.Correct++
	} else {
		next.Incorrect++
	}
	next.HintShown++
	if timing.HintUsed {
		next.HintUsed++
	}
	next.TotalTimeMs += timing.TimeMs
	next.AttemptCount++
	if stats.BestTimeMs == nil || timing.TimeMs < *stats.BestTimeMs {
		best := timing.TimeMs
		next.BestTimeMs = &best
	}
	next.RecentTimes = appendRecent(stats.RecentTimes, timing.TimeMs)

	next.MasteryScore = Score(next, speedBaselineMs, now)
	next.Level = LevelFor(next.MasteryScore, next.Attempts())
	next.NextReview = model.MillisOf(NextDue(next.Level, PerformanceOf(timing.Correct, timing.HintUsed), now))
	next.LastSeen = model.MillisOf(now)
	return next
}

func appendRecent(times []int64, t int64) []int64 {
	out := make([]int64, 0, model.RecentTimesWindow)
	out = append(out, times...)
	out = append(out, t)
	if len(out) > model.RecentTimesWindow {
		out = out[len(out)-model.RecentTimesWindow:]
	}
	return out
}
