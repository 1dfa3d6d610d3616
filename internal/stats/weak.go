package stats

import (
	"sort"

	"github.com/verte-zerg/mojido/internal/mastery"
	"github.com/verte-zerg/mojido/internal/model"
)

// WeakestUnits returns up to n scored units with the lowest mastery score.
// Units with fewer than the minimum answers are left out because their score
// is still provisional.
func WeakestUnits(rows []model.CharacterMastery, n int) []model.CharacterMastery {
	candidates := make([]model.CharacterMastery, 0, len(rows))
	for _, m := range rows {
		if m.Attempts() >= mastery.MinAttempts {
			candidates = append(candidates, m)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].MasteryScore == candidates[j].MasteryScore {
			return candidates[i].Char < candidates[j].Char
		}
		return candidates[i].MasteryScore < candidates[j].MasteryScore
	})
	if n > 0 && n < len(candidates) {
		candidates = candidates[:n]
	}
	return candidates
}
