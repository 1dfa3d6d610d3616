package adaptive

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mojido/internal/model"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func kanaSentence(id, reading string, difficulty float64) model.Sentence {
	return model.Sentence{
		ID:         id,
		Tokens:     []model.SentenceToken{{Surface: reading, Reading: reading}},
		Difficulty: difficulty,
	}
}

func TestIntrinsicDifficulty(t *testing.T) {
	tests := []struct {
		unit string
		want float64
	}{
		{"あ", 0.8},
		{"ア", 1.1},
		{"か", 1.0},
		{"カ", 1.2},
		{"ん", 1.0},
		{"が", 1.1},
		{"ガ", 1.3},
		{"ゃ", 1.3},
		{"ャ", 1.5},
		{"きゃ", 1.3},
		{"キャ", 1.5},
		{"ー", 0},
		{"。", 0},
		{"本", 2.5},
		{"x", 2.5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, IntrinsicDifficulty(tt.unit), 1e-9, tt.unit)
	}
}

func TestSentenceDifficulty(t *testing.T) {
	known := MasteryLookup{
		"あ": {Char: "あ", MasteryScore: 1, Level: model.LevelMastered},
		"い": {Char: "い", MasteryScore: 1, Level: model.LevelMastered},
	}
	repeated := make([]model.SentenceToken, 6)
	for i := range repeated {
		repeated[i] = model.SentenceToken{Surface: "か", Reading: "か"}
	}

	tests := []struct {
		name     string
		sentence model.Sentence
		lookup   MasteryLookup
		want     float64
	}{
		{"all unknown", kanaSentence("a", "あい", 1), nil, 2.12},
		{"all mastered", kanaSentence("a", "あい", 1), known, 0.64},
		{"katakana surface", kanaSentence("a", "ア", 1), nil, 2.39},
		{"punctuation only returns base", kanaSentence("a", "。", 1.3), nil, 1.3},
		{"kanji tokens add to base", model.Sentence{
			ID:         "k",
			Difficulty: 1.5,
			Tokens: []model.SentenceToken{
				{Surface: "本", Reading: "ほん", IsKanji: true},
				{Surface: "を", Reading: "を"},
			},
		}, nil, 2.82},
		{"long sentences scale up", model.Sentence{ID: "l", Difficulty: 1, Tokens: repeated}, nil, 2.76},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SentenceDifficulty(tt.sentence, tt.lookup), 1e-9)
		})
	}
}

func TestSentenceDifficultyDropsWithMastery(t *testing.T) {
	s := kanaSentence("a", "かきくけこ", 1)
	m := MasteryLookup{}
	prev := SentenceDifficulty(s, m)
	for _, unit := range []string{"か", "き", "く", "け", "こ"} {
		m[unit] = model.CharacterMastery{Char: unit, MasteryScore: 0.8, Level: model.LevelMastered}
		next := SentenceDifficulty(s, m)
		assert.Less(t, next, prev, unit)
		prev = next
	}
}

func TestSentenceDifficultyGrowsWithKanji(t *testing.T) {
	withKanji := func(kanji int) model.Sentence {
		tokens := make([]model.SentenceToken, 6)
		for i := range tokens {
			tokens[i] = model.SentenceToken{Surface: "か", Reading: "か"}
			if i < kanji {
				tokens[i] = model.SentenceToken{Surface: "日", Reading: "か", IsKanji: true}
			}
		}
		return model.Sentence{ID: "k", Difficulty: 1, Tokens: tokens}
	}

	tests := []struct {
		name   string
		lookup MasteryLookup
	}{
		{"no history", NewMasteryLookup(nil)},
		{"reading mastered", MasteryLookup{"か": {Char: "か", MasteryScore: 1, Level: model.LevelMastered}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := SentenceDifficulty(withKanji(0), tt.lookup)
			for kanji := 1; kanji <= 6; kanji++ {
				next := SentenceDifficulty(withKanji(kanji), tt.lookup)
				assert.GreaterOrEqual(t, next, prev, "%d kanji", kanji)
				prev = next
			}
		})
	}
}

func TestFit(t *testing.T) {
	s := kanaSentence("a", "あい", 1)
	assert.InDelta(t, 0.54, Fit(s, 1, 1, nil, testNow), 1e-9)

	due := MasteryLookup{"あ": {
		Char:       "あ",
		Level:      model.LevelLearning,
		NextReview: model.MillisOf(testNow.Add(-time.Minute)),
	}}
	assert.InDelta(t, 0.57, Fit(s, 1, 1, due, testNow), 1e-9)

	many := kanaSentence("b", "かきくけこさ", 1)
	assert.InDelta(t, 0.5-0.06, Fit(many, 1, 1, nil, testNow), 1e-9)
}

func TestMaxStaticDifficulty(t *testing.T) {
	assert.Equal(t, 1.2, MaxStaticDifficulty(1.0))
	assert.Equal(t, 1.5, MaxStaticDifficulty(1.2))
	assert.Equal(t, 2.0, MaxStaticDifficulty(1.9))
	assert.Equal(t, 2.5, MaxStaticDifficulty(2.0))
	assert.Equal(t, 3.5, MaxStaticDifficulty(3.0))
}

func TestKanjiReady(t *testing.T) {
	m := MasteryLookup{}
	for i := 0; i < KanjiReadyUnits-1; i++ {
		m[fmt.Sprint(i)] = model.CharacterMastery{Level: model.LevelReviewing}
	}
	m["learning"] = model.CharacterMastery{Level: model.LevelLearning}
	assert.False(t, KanjiReady(m))
	m["last"] = model.CharacterMastery{Level: model.LevelMastered}
	assert.True(t, KanjiReady(m))
}

func beginnerProfile() model.UserProfile {
	return model.DefaultProfile()
}

func TestSelectRespectsHardFilters(t *testing.T) {
	corpus := []model.Sentence{
		kanaSentence("easy1", "あい", 1),
		kanaSentence("easy2", "うえ", 1.1),
		kanaSentence("easy3", "かお", 1.2),
		kanaSentence("hard", "かきくけ", 2.5),
		{ID: "kanji", Difficulty: 1, Tokens: []model.SentenceToken{{Surface: "本", Reading: "ほん", IsKanji: true}}},
	}
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		sel := Select(beginnerProfile(), corpus, nil, nil, rnd, testNow)
		assert.Contains(t, []string{"easy1", "easy2", "easy3"}, sel.Sentence.ID)
		assert.Equal(t, 1.2, sel.Cap)
		assert.False(t, sel.KanjiReady)
	}
}

func TestSelectExcludesRecent(t *testing.T) {
	corpus := []model.Sentence{
		kanaSentence("a", "あ", 1),
		kanaSentence("b", "い", 1),
		kanaSentence("c", "う", 1),
		kanaSentence("d", "え", 1),
		kanaSentence("e", "お", 1),
	}
	rnd := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		sel := Select(beginnerProfile(), corpus, nil, []string{"a", "b"}, rnd, testNow)
		assert.NotContains(t, []string{"a", "b"}, sel.Sentence.ID)
		assert.Len(t, sel.Candidates, 3)
	}
}

func TestSelectRelaxesRecentFilter(t *testing.T) {
	corpus := []model.Sentence{
		kanaSentence("a", "あ", 1),
		kanaSentence("b", "い", 1),
		kanaSentence("c", "う", 1),
	}
	rnd := rand.New(rand.NewSource(5))
	for i := 0; i < 100; i++ {
		sel := Select(beginnerProfile(), corpus, nil, []string{"a", "b", "c"}, rnd, testNow)
		assert.NotEqual(t, "a", sel.Sentence.ID)
		assert.Contains(t, sel.Reason, "only last sentence excluded")
	}

	sel := Select(beginnerProfile(), corpus, nil, []string{"c", "a"}, rnd, testNow)
	assert.Equal(t, "b", sel.Sentence.ID)
	assert.Contains(t, sel.Reason, "relaxed recent filter")
}

func TestSelectFallbacks(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	sel := Select(beginnerProfile(), nil, nil, nil, rnd, testNow)
	assert.Empty(t, sel.Sentence.ID)
	assert.Equal(t, "empty corpus", sel.Reason)

	only := []model.Sentence{kanaSentence("only", "あ", 1)}
	sel = Select(beginnerProfile(), only, nil, []string{"only"}, rnd, testNow)
	assert.Equal(t, "only", sel.Sentence.ID)
	assert.Contains(t, sel.Reason, "full corpus")

	tooHard := []model.Sentence{kanaSentence("x", "あ", 4), kanaSentence("y", "い", 4)}
	sel = Select(beginnerProfile(), tooHard, nil, []string{"x"}, rnd, testNow)
	assert.Equal(t, "y", sel.Sentence.ID)
	assert.Contains(t, sel.Reason, "level filter dropped")
}

func TestSelectSortsCandidatesByFit(t *testing.T) {
	corpus := []model.Sentence{
		kanaSentence("a", "あいうえおかきく", 1),
		kanaSentence("b", "あ", 1),
		kanaSentence("c", "かきくけこさしす", 1.2),
		kanaSentence("d", "いう", 1.1),
	}
	sel := Select(beginnerProfile(), corpus, nil, nil, rand.New(rand.NewSource(9)), testNow)
	require.Len(t, sel.Candidates, 4)
	for i := 1; i < len(sel.Candidates); i++ {
		assert.GreaterOrEqual(t, sel.Candidates[i-1].Fit, sel.Candidates[i].Fit)
	}
}

func TestSelectionTrace(t *testing.T) {
	corpus := make([]model.Sentence, 0, 7)
	for i, reading := range []string{"あ", "い", "う", "え", "お", "か", "き"} {
		corpus = append(corpus, kanaSentence(fmt.Sprintf("s%d", i), reading, 1))
	}
	sel := Select(beginnerProfile(), corpus, nil, nil, rand.New(rand.NewSource(3)), testNow)
	trace := sel.Trace()
	require.Len(t, trace, 7)
	assert.Contains(t, trace[0], "pool=7")
	assert.Contains(t, trace[len(trace)-1], "picked #"+sel.Sentence.ID)

	var want float64
	for _, c := range sel.Candidates {
		if c.Sentence.ID == sel.Sentence.ID {
			want = c.Difficulty
		}
	}
	assert.Equal(t, want, sel.Difficulty(nil))

	empty := Select(beginnerProfile(), nil, nil, nil, rand.New(rand.NewSource(3)), testNow)
	assert.Len(t, empty.Trace(), 2)
}

func TestSelectDeterministicWithSeed(t *testing.T) {
	corpus := make([]model.Sentence, 0, 12)
	for i, reading := range []string{"あ", "い", "う", "え", "お", "か", "き", "く", "け", "こ", "さ", "し"} {
		corpus = append(corpus, kanaSentence(fmt.Sprintf("s%d", i), reading, 1))
	}
	first := NewSelector(42)
	second := NewSelector(42)
	for i := 0; i < 20; i++ {
		a := first.Select(beginnerProfile(), corpus, nil, nil, testNow)
		b := second.Select(beginnerProfile(), corpus, nil, nil, testNow)
		assert.Equal(t, a.Sentence.ID, b.Sentence.ID)
		assert.Equal(t, a.Reason, b.Reason)
	}
}

func TestBeginnerPicksFromTopFive(t *testing.T) {
	corpus := []model.Sentence{
		kanaSentence("a", "あ", 1),
		kanaSentence("b", "あい", 1),
		kanaSentence("c", "あいう", 1),
		kanaSentence("d", "かきくけ", 1),
		kanaSentence("e", "かきくけこさ", 1),
		kanaSentence("f", "かきくけこさしすせそ", 1),
		kanaSentence("g", "がぎぐげござじずぜぞ", 1),
	}
	rnd := rand.New(rand.NewSource(11))
	counts := make(map[int]int)
	const draws = 2000
	for i := 0; i < draws; i++ {
		sel := Select(beginnerProfile(), corpus, nil, nil, rnd, testNow)
		rank := -1
		for j, c := range sel.Candidates {
			if c.Sentence.ID == sel.Sentence.ID {
				rank = j
				break
			}
		}
		require.GreaterOrEqual(t, rank, 0)
		require.Less(t, rank, 5)
		counts[rank]++
	}
	assert.InDelta(t, 0.40, float64(counts[0])/draws, 0.05)
	assert.InDelta(t, 0.05, float64(counts[4])/draws, 0.03)
}

func TestPickSubsetFallsBackToBestFit(t *testing.T) {
	scored := []Candidate{
		{Sentence: model.Sentence{ID: "best"}, Difficulty: 1},
		{Sentence: model.Sentence{ID: "next"}, Difficulty: 1.1},
	}
	rnd := rand.New(rand.NewSource(1))

	s, reason := pickSubset(scored, rnd, "advanced probe", func(c Candidate) bool { return c.Difficulty > 5 })
	assert.Equal(t, "best", s.ID)
	assert.Equal(t, "advanced probe fallback", reason)

	s, reason = pickSubset(scored, rnd, "advanced comfort", func(c Candidate) bool { return c.Difficulty > 1 })
	assert.Equal(t, "next", s.ID)
	assert.Equal(t, "advanced comfort", reason)
}

func TestAdjustDifficulty(t *testing.T) {
	base := model.UserProfile{CurrentDifficulty: 2, SpeedBaselineMs: 1000}
	crushing := model.SentenceResult{Accuracy: 1, AvgTimeMs: 500}
	struggling := model.SentenceResult{Accuracy: 0.9, AvgTimeMs: 500, HadErrors: true}
	steady := model.SentenceResult{Accuracy: 0.92, AvgTimeMs: 950, HintsUsed: 1}

	tests := []struct {
		name    string
		profile func() model.UserProfile
		result  model.SentenceResult
		want    ProfileDelta
	}{
		{"first perfect sentence", func() model.UserProfile { return base }, crushing,
			ProfileDelta{CurrentDifficulty: 2, ConsecutivePerfect: 1}},
		{"fifth perfect sentence steps up", func() model.UserProfile {
			p := base
			p.ConsecutivePerfect = 4
			return p
		}, crushing, ProfileDelta{CurrentDifficulty: 2.16}},
		{"first struggle", func() model.UserProfile {
			p := base
			p.ConsecutivePerfect = 3
			return p
		}, struggling, ProfileDelta{CurrentDifficulty: 2, ConsecutiveStruggle: 1}},
		{"second struggle steps down", func() model.UserProfile {
			p := base
			p.ConsecutiveStruggle = 1
			return p
		}, struggling, ProfileDelta{CurrentDifficulty: 1.8}},
		{"steady nudges up", func() model.UserProfile {
			p := base
			p.ConsecutivePerfect = 2
			p.ConsecutiveStruggle = 1
			return p
		}, steady, ProfileDelta{CurrentDifficulty: 2.02}},
		{"slow but accurate holds", func() model.UserProfile { return base },
			model.SentenceResult{Accuracy: 0.92, AvgTimeMs: 1500}, ProfileDelta{CurrentDifficulty: 2}},
		{"clamped high", func() model.UserProfile {
			p := base
			p.CurrentDifficulty = 4.9
			p.ConsecutivePerfect = 4
			return p
		}, crushing, ProfileDelta{CurrentDifficulty: MaxDifficulty}},
		{"clamped low", func() model.UserProfile {
			p := base
			p.CurrentDifficulty = 0.85
			p.ConsecutiveStruggle = 1
			return p
		}, struggling, ProfileDelta{CurrentDifficulty: MinDifficulty}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdjustDifficulty(tt.profile(), tt.result)
			assert.InDelta(t, tt.want.CurrentDifficulty, got.CurrentDifficulty, 1e-9)
			assert.Equal(t, tt.want.ConsecutivePerfect, got.ConsecutivePerfect)
			assert.Equal(t, tt.want.ConsecutiveStruggle, got.ConsecutiveStruggle)
		})
	}
}

func TestProfileDeltaApply(t *testing.T) {
	p := model.UserProfile{CurrentDifficulty: 1, SpeedBaselineMs: 900, OverallSkill: 0.3}
	got := ProfileDelta{CurrentDifficulty: 1.5, ConsecutivePerfect: 2}.Apply(p)
	assert.Equal(t, 1.5, got.CurrentDifficulty)
	assert.Equal(t, 2, got.ConsecutivePerfect)
	assert.Equal(t, 900.0, got.SpeedBaselineMs)
	assert.Equal(t, 0.3, got.OverallSkill)
}

func TestUpdateSpeedBaseline(t *testing.T) {
	assert.InDelta(t, 900, UpdateSpeedBaseline(1000, 500), 1e-9)
	assert.InDelta(t, 220, UpdateSpeedBaseline(250, 100), 1e-9)
	assert.Equal(t, MinSpeedBaselineMs, UpdateSpeedBaseline(200, 0))
	assert.Equal(t, MaxSpeedBaselineMs, UpdateSpeedBaseline(3000, 5000))
}

func TestOverallSkill(t *testing.T) {
	assert.Zero(t, OverallSkill(nil))
	m := MasteryLookup{
		"あ": {Correct: 3, MasteryScore: 0.5},
		"い": {Correct: 2, Incorrect: 2, MasteryScore: 0.7},
		"う": {Correct: 2, MasteryScore: 0.9},
	}
	assert.InDelta(t, 0.6, OverallSkill(m), 1e-9)
}
