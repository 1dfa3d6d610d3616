package adaptive

import (
	"github.com/verte-zerg/mojido/internal/mastery"
	"github.com/verte-zerg/mojido/internal/model"
)

// Bounds for the target difficulty and the speed baseline.
const (
	MinDifficulty = 0.8
	MaxDifficulty = 5.0

	MinSpeedBaselineMs = 200.0
	MaxSpeedBaselineMs = 3000.0
)

const (
	perfectStreak  = 5
	struggleStreak = 2
	stepUp         = 1.08
	stepDown       = 0.90
	nudge          = 1.01
)

// ProfileDelta holds the profile fields changed by AdjustDifficulty.
type ProfileDelta struct {
	CurrentDifficulty   float64
	ConsecutivePerfect  int
	ConsecutiveStruggle int
}

// Apply writes the delta onto a profile.
func (d ProfileDelta) Apply(p model.UserProfile) model.UserProfile {
	p.CurrentDifficulty = d.CurrentDifficulty
	p.ConsecutivePerfect = d.ConsecutivePerfect
	p.ConsecutiveStruggle = d.ConsecutiveStruggle
	return p
}

// AdjustDifficulty moves the target difficulty after a completed sentence.
// Five fast, clean sentences in a row raise it by 8%; two struggling ones
// lower it by 10%; a good but unremarkable sentence nudges it up by 1%.
func AdjustDifficulty(profile model.UserProfile, result model.SentenceResult) ProfileDelta {
	d := ProfileDelta{
		CurrentDifficulty:   profile.CurrentDifficulty,
		ConsecutivePerfect:  profile.ConsecutivePerfect,
		ConsecutiveStruggle: profile.ConsecutiveStruggle,
	}

	crushing := result.Accuracy >= 0.95 &&
		result.AvgTimeMs < profile.SpeedBaselineMs*0.9 &&
		result.HintsUsed == 0 &&
		!result.HadErrors
	struggling := result.Accuracy < 0.7 || result.HadErrors

	switch {
	case crushing:
		d.ConsecutivePerfect++
		d.ConsecutiveStruggle = 0
		if d.ConsecutivePerfect >= perfectStreak {
			d.CurrentDifficulty *= stepUp
			d.ConsecutivePerfect = 0
		}
	case struggling:
		d.ConsecutiveStruggle++
		d.ConsecutivePerfect = 0
		if d.ConsecutiveStruggle >= struggleStreak {
			d.CurrentDifficulty *= stepDown
			d.ConsecutiveStruggle = 0
		}
	default:
		d.ConsecutivePerfect = 0
		d.ConsecutiveStruggle = 0
		if result.Accuracy >= 0.9 && result.AvgTimeMs < profile.SpeedBaselineMs {
			d.CurrentDifficulty *= nudge
		}
	}

	d.CurrentDifficulty = clamp(d.CurrentDifficulty, MinDifficulty, MaxDifficulty)
	return d
}

// UpdateSpeedBaseline blends the latest sentence average into the baseline.
func UpdateSpeedBaseline(current, recentAvgMs float64) float64 {
	return clamp(current*0.8+recentAvgMs*0.2, MinSpeedBaselineMs, MaxSpeedBaselineMs)
}

// OverallSkill averages the score of units with enough answers.
func OverallSkill(m MasteryLookup) float64 {
	var total float64
	n := 0
	for _, stats := range m {
		if stats.Attempts() >= mastery.MinAttempts {
			total += stats.MasteryScore
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
