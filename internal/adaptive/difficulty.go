// Package adaptive estimates sentence difficulty, picks the next sentence and
// adjusts the learner's target difficulty.
package adaptive

import (
	"github.com/verte-zerg/mojido/internal/kana"
	"github.com/verte-zerg/mojido/internal/model"
)

// MasteryLookup maps a hiragana unit to its stats. A missing entry is
// treated as a new unit with score 0.
type MasteryLookup map[string]model.CharacterMastery

// NewMasteryLookup indexes rows by unit.
func NewMasteryLookup(rows []model.CharacterMastery) MasteryLookup {
	m := make(MasteryLookup, len(rows))
	for _, row := range rows {
		m[row.Char] = row
	}
	return m
}

// unknown reports whether the unit has no record or is still new.
func (m MasteryLookup) unknown(unit string) bool {
	stats, ok := m[unit]
	return !ok || stats.Level == model.LevelNew || stats.Level == ""
}

const (
	kanjiPenalty    = 0.8
	baseWeight      = 0.4
	unitWeight      = 0.6
	masteryCeiling  = 1.5
	unknownRatioMax = 0.5
	lengthFree      = 4
	lengthStep      = 0.1
)

// Intrinsic difficulty tiers, hiragana then katakana.
var tiers = map[kana.Class][2]float64{
	kana.ClassVowel:  {0.8, 1.1},
	kana.ClassBasic:  {1.0, 1.2},
	kana.ClassVoiced: {1.1, 1.3},
	kana.ClassSmall:  {1.3, 1.5},
}

const unknownDifficulty = 2.5

// IntrinsicDifficulty returns the fixed difficulty of a unit as written.
// Katakana costs slightly more than the same hiragana. Punctuation and the
// prolonged sound mark cost nothing.
func IntrinsicDifficulty(unit string) float64 {
	folded := kana.ToHiragana(unit)
	class := kana.Classify(folded)
	if class == kana.ClassPunctuation {
		return 0
	}
	tier, ok := tiers[class]
	if !ok {
		return unknownDifficulty
	}
	if folded != unit {
		return tier[1]
	}
	return tier[0]
}

// sentenceUnits returns the weighted units of the sentence reading.
func sentenceUnits(s model.Sentence) []kana.Token {
	return kana.Units(s.Reading())
}

// SentenceDifficulty estimates how hard s is for the learner right now.
// It is recomputed on every call since mastery changes after each sentence.
func SentenceDifficulty(s model.Sentence, m MasteryLookup) float64 {
	base := s.Difficulty + kanjiPenalty*float64(s.KanjiCount())

	var sum float64
	var count, unknown int
	for _, tok := range sentenceUnits(s) {
		intrinsic := IntrinsicDifficulty(tok.Source)
		if intrinsic == 0 {
			continue
		}
		score := 0.0
		if stats, ok := m[tok.Kana]; ok {
			score = stats.MasteryScore
		}
		if m.unknown(tok.Kana) {
			unknown++
		}
		sum += intrinsic * (masteryCeiling - score)
		count++
	}
	if count == 0 {
		return base
	}

	avg := sum / float64(count)
	penalty := 0.0
	if ratio := float64(unknown) / float64(count); ratio > unknownRatioMax {
		penalty = (ratio - unknownRatioMax) * 2
	}
	lengthFactor := 1 + max(0, float64(len(s.Tokens)-lengthFree)*lengthStep)

	return (base*baseWeight + avg*unitWeight + penalty) * lengthFactor
}
