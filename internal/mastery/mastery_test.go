package mastery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mojido/internal/model"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func TestScoreNeedsThreeAttempts(t *testing.T) {
	stats := model.CharacterMastery{Correct: 2, AttemptCount: 2, TotalTimeMs: 400, LastSeen: model.MillisOf(testNow)}
	assert.Zero(t, Score(stats, 1000, testNow))
	assert.Equal(t, model.LevelNew, LevelFor(Score(stats, 1000, testNow), stats.Attempts()))
}

func TestScore(t *testing.T) {
	perfect := model.CharacterMastery{
		Correct:      3,
		AttemptCount: 3,
		TotalTimeMs:  1500,
		RecentTimes:  []int64{500, 500, 500},
		LastSeen:     model.MillisOf(testNow),
	}

	tests := []struct {
		name  string
		stats func() model.CharacterMastery
		want  float64
	}{
		{"perfect", func() model.CharacterMastery { return perfect }, 1.0},
		{"ten days stale", func() model.CharacterMastery {
			s := perfect
			s.LastSeen = model.MillisOf(testNow.Add(-10 * 24 * time.Hour))
			return s
		}, 0.7},
		{"never seen decays to floor", func() model.CharacterMastery {
			s := perfect
			s.LastSeen = 0
			return s
		}, 0.5},
		{"mixed components", func() model.CharacterMastery {
			return model.CharacterMastery{
				Correct:      2,
				Incorrect:    1,
				AttemptCount: 3,
				TotalTimeMs:  6000,
				RecentTimes:  []int64{1000, 3000},
				HintShown:    4,
				HintUsed:     2,
				LastSeen:     model.MillisOf(testNow),
			}
		}, 0.45},
		{"single sample is neutral consistency", func() model.CharacterMastery {
			s := perfect
			s.RecentTimes = []int64{500}
			return s
		}, 0.9},
		{"untimed falls back to baseline", func() model.CharacterMastery {
			s := perfect
			s.AttemptCount = 0
			s.TotalTimeMs = 0
			return s
		}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.stats(), 1000, testNow), 1e-9)
		})
	}
}

func TestScoreStaysInRange(t *testing.T) {
	for correct := 0; correct < 6; correct++ {
		for incorrect := 0; incorrect < 6; incorrect++ {
			stats := model.CharacterMastery{
				Correct:      correct,
				Incorrect:    incorrect,
				AttemptCount: correct + incorrect,
				TotalTimeMs:  int64(50 * (correct + incorrect)),
				RecentTimes:  []int64{10, 5000, 20},
				HintShown:    3,
				HintUsed:     1,
				LastSeen:     model.MillisOf(testNow.Add(-time.Hour)),
			}
			score := Score(stats, 3000, testNow)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	}
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, model.LevelNew, LevelFor(0.9, 2))
	assert.Equal(t, model.LevelLearning, LevelFor(0.39, 3))
	assert.Equal(t, model.LevelReviewing, LevelFor(0.4, 3))
	assert.Equal(t, model.LevelReviewing, LevelFor(0.749, 10))
	assert.Equal(t, model.LevelMastered, LevelFor(0.75, 10))
}

func TestPerformanceOf(t *testing.T) {
	assert.Equal(t, Good, PerformanceOf(true, false))
	assert.Equal(t, OK, PerformanceOf(true, true))
	assert.Equal(t, Bad, PerformanceOf(false, false))
	assert.Equal(t, Bad, PerformanceOf(false, true))
	assert.Equal(t, "ok", OK.String())
}

func TestInterval(t *testing.T) {
	tests := []struct {
		level model.Level
		perf  Performance
		want  time.Duration
	}{
		{model.LevelNew, Good, 5 * time.Minute},
		{model.LevelNew, Bad, time.Minute},
		{model.LevelLearning, OK, 10 * time.Minute},
		{model.LevelReviewing, Good, 24 * time.Hour},
		{model.LevelReviewing, Bad, time.Hour},
		{model.LevelMastered, Good, 72 * time.Hour},
		{model.LevelMastered, OK, 24 * time.Hour},
		{model.Level("bogus"), Good, 5 * time.Minute},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Interval(tt.level, tt.perf), "%s/%s", tt.level, tt.perf)
	}
	assert.Equal(t, testNow.Add(4*time.Hour), NextDue(model.LevelMastered, Bad, testNow))
}

func TestIsDue(t *testing.T) {
	assert.False(t, IsDue(model.CharacterMastery{}, testNow))
	assert.True(t, IsDue(model.CharacterMastery{NextReview: model.MillisOf(testNow)}, testNow))
	assert.False(t, IsDue(model.CharacterMastery{NextReview: model.MillisOf(testNow.Add(time.Second))}, testNow))
}

func TestApply(t *testing.T) {
	var stats model.CharacterMastery
	answers := []model.CharTiming{
		{Char: "か", TimeMs: 600, Correct: true},
		{Char: "か", TimeMs: 400, Correct: true, HintUsed: true},
		{Char: "か", TimeMs: 900, Correct: false},
	}
	for i, a := range answers {
		stats = Apply(stats, a, 1000, testNow.Add(time.Duration(i)*time.Minute))
	}

	assert.Equal(t, "か", stats.Char)
	assert.Equal(t, 2, stats.Correct)
	assert.Equal(t, 1, stats.Incorrect)
	assert.Equal(t, 3, stats.HintShown)
	assert.Equal(t, 1, stats.HintUsed)
	assert.Equal(t, int64(1900), stats.TotalTimeMs)
	assert.Equal(t, 3, stats.AttemptCount)
	require.NotNil(t, stats.BestTimeMs)
	assert.Equal(t, int64(400), *stats.BestTimeMs)
	assert.Equal(t, []int64{600, 400, 900}, stats.RecentTimes)
	assert.Equal(t, model.MillisOf(testNow.Add(2*time.Minute)), stats.LastSeen)
	assert.Equal(t, LevelFor(stats.MasteryScore, 3), stats.Level)
	assert.NotEqual(t, model.LevelNew, stats.Level)

	want := NextDue(stats.Level, Bad, testNow.Add(2*time.Minute))
	assert.Equal(t, model.MillisOf(want), stats.NextReview)
}

func TestApplyBoundsRecentTimes(t *testing.T) {
	var stats model.CharacterMastery
	for i := 0; i < 15; i++ {
		stats = Apply(stats, model.CharTiming{Char: "あ", TimeMs: int64(i), Correct: true}, 1000, testNow)
	}
	require.Len(t, stats.RecentTimes, model.RecentTimesWindow)
	assert.Equal(t, int64(5), stats.RecentTimes[0])
	assert.Equal(t, int64(14), stats.RecentTimes[9])
}
