package adaptive

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/verte-zerg/mojido/internal/mastery"
	"github.com/verte-zerg/mojido/internal/model"
)

const (
	// KanjiReadyUnits is how many reviewing or mastered units unlock kanji.
	KanjiReadyUnits = 30
	// RecentWindow is how many recently shown sentence ids Select looks at.
	RecentWindow = 15

	relaxedWindow = 3
	topN          = 5
	subsetPick    = 3
)

// Candidate is a scored sentence considered by Select.
type Candidate struct {
	Sentence   model.Sentence
	Difficulty float64
	Fit        float64
}

// Selection is the outcome of Select.
type Selection struct {
	Sentence   model.Sentence
	Reason     string
	Target     float64
	Cap        float64
	KanjiReady bool
	// Candidates holds the scored pool, best fit first.
	Candidates []Candidate
}

// Selector picks practice sentences.
type Selector struct {
	rnd *rand.Rand
}

// NewSelector returns a Selector. A zero seed uses the current time.
func NewSelector(seed int64) *Selector {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Selector{rnd: rand.New(rand.NewSource(seed))}
}

// Select picks the next sentence using the selector's random source.
func (s *Selector) Select(profile model.UserProfile, corpus []model.Sentence, m MasteryLookup, recentIDs []string, now time.Time) Selection {
	return Select(profile, corpus, m, recentIDs, s.rnd, now)
}

// Difficulty returns the mastery-adjusted difficulty of the chosen sentence.
func (s Selection) Difficulty(m MasteryLookup) float64 {
	for _, c := range s.Candidates {
		if c.Sentence.ID == s.Sentence.ID {
			return c.Difficulty
		}
	}
	return SentenceDifficulty(s.Sentence, m)
}

// Trace describes the decision: target, filters, the top candidates and
// the reason for the pick.
func (s Selection) Trace() []string {
	lines := []string{
		fmt.Sprintf("target=%.2f cap=%.1f kanji=%t pool=%d", s.Target, s.Cap, s.KanjiReady, len(s.Candidates)),
	}
	for i, c := range s.Candidates[:min(topN, len(s.Candidates))] {
		lines = append(lines, fmt.Sprintf("  %d. #%s %s difficulty=%.2f fit=%.3f",
			i+1, c.Sentence.ID, c.Sentence.Surface(), c.Difficulty, c.Fit))
	}
	return append(lines, fmt.Sprintf("picked #%s: %s", s.Sentence.ID, s.Reason))
}

// MaxStaticDifficulty caps the corpus difficulty offered at a target level.
func MaxStaticDifficulty(target float64) float64 {
	switch {
	case target < 1.2:
		return 1.2
	case target < 1.5:
		return 1.5
	case target < 2.0:
		return 2.0
	case target < 3.0:
		return 2.5
	default:
		return 3.5
	}
}

// KanjiReady reports whether enough units are known to offer kanji.
func KanjiReady(m MasteryLookup) bool {
	n := 0
	for _, stats := range m {
		if stats.Level == model.LevelReviewing || stats.Level == model.LevelMastered {
			n++
		}
	}
	return n >= KanjiReadyUnits
}

// Fit scores how well a sentence of the given difficulty suits the target.
func Fit(s model.Sentence, difficulty, target float64, m MasteryLookup, now time.Time) float64 {
	match := 1 - math.Abs(difficulty-target)/math.Max(1, target)

	seen := make(map[string]struct{})
	var due, fresh int
	for _, tok := range sentenceUnits(s) {
		if IntrinsicDifficulty(tok.Source) == 0 {
			continue
		}
		if _, ok := seen[tok.Kana]; ok {
			continue
		}
		seen[tok.Kana] = struct{}{}
		if stats, ok := m[tok.Kana]; ok && mastery.IsDue(stats, now) {
			due++
		}
		if m.unknown(tok.Kana) {
			fresh++
		}
	}

	reviewBonus := math.Min(0.3, float64(due)*0.1)
	newBonus := 0.0
	switch {
	case fresh >= 1 && fresh <= 3:
		newBonus = 0.2
	case fresh > 5:
		newBonus = -0.3
	}
	return match*0.5 + reviewBonus*0.3 + newBonus*0.2
}

// Select picks the next sentence for the learner.
// Hard filters (difficulty cap, kanji gate, recent exclusion) are applied
// deterministically and relaxed step by step when they leave nothing.
// Randomness comes only from rnd.
func Select(profile model.UserProfile, corpus []model.Sentence, m MasteryLookup, recentIDs []string, rnd *rand.Rand, now time.Time) Selection {
	target := profile.CurrentDifficulty
	sel := Selection{
		Target:     target,
		Cap:        MaxStaticDifficulty(target),
		KanjiReady: KanjiReady(m),
	}
	if len(corpus) == 0 {
		sel.Reason = "empty corpus"
		return sel
	}

	filtered := make([]model.Sentence, 0, len(corpus))
	for _, s := range corpus {
		if s.Difficulty > sel.Cap {
			continue
		}
		if !sel.KanjiReady && s.HasKanji() {
			continue
		}
		filtered = append(filtered, s)
	}

	pool, note := buildPool(filtered, corpus, recentIDs)
	if len(pool) == 0 {
		sel.Sentence = corpus[0]
		sel.Reason = "no candidates, first sentence"
		return sel
	}

	scored := make([]Candidate, len(pool))
	for i, s := range pool {
		d := SentenceDifficulty(s, m)
		scored[i] = Candidate{Sentence: s, Difficulty: d, Fit: Fit(s, d, target, m, now)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Fit > scored[j].Fit
	})
	sel.Candidates = scored

	chosen, reason := pick(scored, target, rnd)
	if len(recentIDs) > 0 && chosen.ID == recentIDs[0] && len(scored) > 1 {
		for _, c := range scored {
			if c.Sentence.ID != recentIDs[0] {
				chosen = c.Sentence
				reason += " (avoided repeat)"
				break
			}
		}
	}
	if note != "" {
		reason = note + ", " + reason
	}
	sel.Sentence = chosen
	sel.Reason = reason
	return sel
}

// buildPool removes recently shown sentences, relaxing the exclusion when too
// few remain.
func buildPool(filtered, corpus []model.Sentence, recentIDs []string) ([]model.Sentence, string) {
	if pool := excludeRecent(filtered, recentIDs, RecentWindow); len(pool) >= relaxedWindow {
		return pool, ""
	}
	if pool := excludeRecent(filtered, recentIDs, relaxedWindow); len(pool) > 0 {
		return pool, "relaxed recent filter"
	}
	if pool := excludeRecent(filtered, recentIDs, 1); len(pool) > 0 {
		return pool, "only last sentence excluded"
	}
	if pool := excludeRecent(corpus, recentIDs, 1); len(pool) > 0 {
		return pool, "level filter dropped"
	}
	return corpus, "full corpus"
}

func excludeRecent(sentences []model.Sentence, recentIDs []string, n int) []model.Sentence {
	if n > len(recentIDs) {
		n = len(recentIDs)
	}
	skip := make(map[string]struct{}, n)
	for _, id := range recentIDs[:n] {
		skip[id] = struct{}{}
	}
	out := make([]model.Sentence, 0, len(sentences))
	for _, s := range sentences {
		if _, ok := skip[s.ID]; ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

var beginnerWeights = [topN]float64{0.40, 0.65, 0.85, 0.95, 1.0}

// pick applies the tiered selection policy to candidates sorted by fit.
func pick(scored []Candidate, target float64, rnd *rand.Rand) (model.Sentence, string) {
	n := min(topN, len(scored))
	roll := rnd.Float64()

	switch {
	case target < 1.5:
		idx := 0
		for i := 0; i < n; i++ {
			if roll < beginnerWeights[i] {
				idx = i
				break
			}
		}
		return scored[idx].Sentence, fmt.Sprintf("beginner, rank %d", idx+1)
	case target < 2.5:
		switch {
		case roll < 0.10:
			return pickSubset(scored, rnd, "intermediate probe", func(c Candidate) bool { return c.Difficulty > target })
		case roll < 0.30:
			return pickSubset(scored, rnd, "intermediate comfort", func(c Candidate) bool { return c.Difficulty < target*0.9 })
		default:
			return scored[rnd.Intn(n)].Sentence, "intermediate target"
		}
	default:
		switch {
		case roll < 0.15:
			return pickSubset(scored, rnd, "advanced probe", func(c Candidate) bool { return c.Difficulty > target*1.2 })
		case roll < 0.35:
			return pickSubset(scored, rnd, "advanced comfort", func(c Candidate) bool { return c.Difficulty < target*0.8 })
		default:
			return scored[rnd.Intn(n)].Sentence, "advanced target"
		}
	}
}

// pickSubset picks uniformly among the first few matching candidates, falling
// back to the best fit when none match.
func pickSubset(scored []Candidate, rnd *rand.Rand, label string, keep func(Candidate) bool) (model.Sentence, string) {
	var subset []Candidate
	for _, c := range scored {
		if keep(c) {
			subset = append(subset, c)
			if len(subset) == subsetPick {
				break
			}
		}
	}
	if len(subset) == 0 {
		return scored[0].Sentence, label + " fallback"
	}
	return subset[rnd.Intn(len(subset))].Sentence, label
}
