// Package mastery scores per-kana mastery and schedules reviews.
package mastery

import (
	"math"
	"time"

	"github.com/verte-zerg/mojido/internal/model"
)

const (
	// MinAttempts is the number of answers needed before a unit is scored.
	MinAttempts = 3

	minAvgTimeMs    = 100.0
	stdDevCeilingMs = 500.0
	neverSeenDays   = 30.0
	decayPerDay     = 0.03
	decayFloor      = 0.5

	weightAccuracy    = 0.30
	weightSpeed       = 0.25
	weightConsistency = 0.20
	weightHintFreedom = 0.25

	learningBelow  = 0.4
	reviewingBelow = 0.75
)

// Score computes the mastery score in [0, 1] for one unit.
// Units with fewer than MinAttempts answers score 0.
func Score(stats model.CharacterMastery, speedBaselineMs float64, now time.Time) float64 {
	if stats.Attempts() < MinAttempts {
		return 0
	}

	avg := stats.AvgTimeMs()
	if avg == 0 {
		avg = speedBaselineMs
	}
	speed := math.Min(1, speedBaselineMs/math.Max(minAvgTimeMs, avg))
	consistency := 1 - normalizedVariance(stats.RecentTimes)
	hintFreedom := 1 - stats.HintRate()

	raw := weightAccuracy*clamp(stats.Accuracy(), 0, 1) +
		weightSpeed*clamp(speed, 0, 1) +
		weightConsistency*clamp(consistency, 0, 1) +
		weightHintFreedom*clamp(hintFreedom, 0, 1)

	return clamp(raw*recency(stats.LastSeen, now), 0, 1)
}

// LevelFor maps a score and answer count to a level.
func LevelFor(score float64, attempts int) model.Level {
	switch {
	case attempts < MinAttempts:
		return model.LevelNew
	case score < learningBelow:
		return model.LevelLearning
	case score < reviewingBelow:
		return model.LevelReviewing
	default:
		return model.LevelMastered
	}
}

// normalizedVariance returns the standard deviation of times scaled so that
// 500ms or more maps to 1. Too little data yields a neutral 0.5.
func normalizedVariance(times []int64) float64 {
	if len(times) < 2 {
		return 0.5
	}
	var sum float64
	for _, t := range times {
		sum += float64(t)
	}
	mean := sum / float64(len(times))
	if mean == 0 {
		return 0.5
	}
	var sq float64
	for _, t := range times {
		d := float64(t) - mean
		sq += d * d
	}
	stdDev := math.Sqrt(sq / float64(len(times)))
	return math.Min(1, stdDev/stdDevCeilingMs)
}

func daysSince(lastSeen model.Millis, now time.Time) float64 {
	if lastSeen.IsZero() {
		return neverSeenDays
	}
	return now.Sub(lastSeen.Time()).Hours() / 24
}

func recency(lastSeen model.Millis, now time.Time) float64 {
	return math.Max(decayFloor, 1-daysSince(lastSeen, now)*decayPerDay)
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
