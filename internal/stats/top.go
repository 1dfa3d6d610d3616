package stats

import (
	"sort"

	"github.com/verte-zerg/mojido/internal/model"
)

// MostPracticed returns up to n units with the most answers.
func MostPracticed(rows []model.CharacterMastery, n int) []string {
	if n <= 0 || len(rows) == 0 {
		return nil
	}
	ranked := make([]model.CharacterMastery, len(rows))
	copy(ranked, rows)
	sort.Slice(ranked, func(i, j int) bool {
		ai, aj := ranked[i].Attempts(), ranked[j].Attempts()
		if ai == aj {
			return ranked[i].Char < ranked[j].Char
		}
		return ai > aj
	})
	out := make([]string, 0, n)
	for _, m := range ranked {
		if len(out) == n || m.Attempts() == 0 {
			break
		}
		out = append(out, m.Char)
	}
	return out
}
