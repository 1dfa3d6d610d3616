package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/mojido/internal/model"
)

func TestSessionMetrics(t *testing.T) {
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	rec := model.SessionRecord{
		StartedAt:    model.MillisOf(start),
		EndedAt:      model.MillisOf(start.Add(2 * time.Minute)),
		TotalChars:   100,
		CorrectChars: 90,
	}
	kpm, acc := SessionMetrics(rec)
	if math.Abs(kpm-45) > 1e-9 {
		t.Fatalf("expected 45 kana/min, got %v", kpm)
	}
	if math.Abs(acc-0.9) > 1e-9 {
		t.Fatalf("expected accuracy 0.9, got %v", acc)
	}

	rec.EndedAt = 0
	kpm, acc = SessionMetrics(rec)
	if kpm != 0 || math.Abs(acc-0.9) > 1e-9 {
		t.Fatalf("open session: kpm=%v acc=%v", kpm, acc)
	}
	if kpm, acc := SessionMetrics(model.SessionRecord{}); kpm != 0 || acc != 0 {
		t.Fatalf("empty session: kpm=%v acc=%v", kpm, acc)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	same := MovingAverage([]float64{1, 5}, 1)
	if same[0] != 1 || same[1] != 5 {
		t.Fatalf("window 1 should copy values: %v", same)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 1}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("flat sparkline %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
}

func TestReviewLabel(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		next model.Millis
		want string
	}{
		{0, "-"},
		{model.MillisOf(now.Add(-time.Minute)), "due"},
		{model.MillisOf(now), "due"},
		{model.MillisOf(now.Add(90 * time.Second)), "in 2m"},
		{model.MillisOf(now.Add(4 * time.Hour)), "in 4h"},
		{model.MillisOf(now.Add(72 * time.Hour)), "in 3d"},
	}
	for _, tc := range cases {
		if got := ReviewLabel(model.CharacterMastery{NextReview: tc.next}, now); got != tc.want {
			t.Fatalf("next=%d: expected %q, got %q", tc.next, tc.want, got)
		}
	}
}

func TestMasteryRows(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	best := int64(310)
	rows := MasteryRows([]model.CharacterMastery{{
		Char:         "しゃ",
		Correct:      3,
		Incorrect:    1,
		TotalTimeMs:  2000,
		AttemptCount: 4,
		BestTimeMs:   &best,
		MasteryScore: 0.6,
		Level:        model.LevelLearning,
		NextReview:   model.MillisOf(now.Add(-time.Second)),
	}}, now)
	want := []string{"しゃ", "sha", "learning", "0.60", "75.0%", "500", "310", "4", "due"}
	if strings.Join(rows[0], "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected row %q", rows[0])
	}
	if len(MasteryHeaders) != len(want) {
		t.Fatalf("headers and row width differ")
	}
}

func TestRenderSummary(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	r := Report{
		Now: now,
		Profile: model.UserProfile{
			OverallSkill:      0.42,
			CurrentDifficulty: 1.35,
			SpeedBaselineMs:   850,
			TotalPracticeMs:   65000,
			CharsTypedTotal:   321,
		},
		AllMastery: []model.CharacterMastery{
			{Char: "あ", Correct: 5, MasteryScore: 0.9, Level: model.LevelMastered},
			{Char: "し", Correct: 2, Incorrect: 2, MasteryScore: 0.3, Level: model.LevelLearning},
		},
		DueCount:    1,
		DayStreak:   3,
		HasLast:     true,
		LastSession: model.SessionRecord{TotalChars: 200, CorrectChars: 187, MaxStreak: 41},
	}
	var buf bytes.Buffer
	if err := RenderSummary(&buf, r); err != nil {
		t.Fatalf("RenderSummary failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Skill: 42%",
		"Target difficulty: 1.35",
		"Speed baseline: 850 ms",
		"Practice time: 1m5s",
		"Kana typed: 321",
		"Day streak: 3",
		"Last session: 93.5% accuracy, max streak 41",
		"Due for review: 1",
		"Levels: new 0, learning 1, reviewing 0, mastered 1",
		"Weakest: し (0.30), あ (0.90)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary:\n%s", want, out)
		}
	}
}

func TestRenderMasteryTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderMasteryTable(&buf, nil, time.Now()); err != nil {
		t.Fatalf("RenderMasteryTable failed: %v", err)
	}
	if buf.String() != "No kana stats found.\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
