package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/mojido/internal/model"
	"github.com/verte-zerg/mojido/internal/store"
)

func seedStore(t *testing.T, now time.Time) (*store.Store, []int64) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "mojido.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := now.Add(time.Duration(i-3) * time.Hour)
		id, err := st.StartSession(ctx, "token", start)
		if err != nil {
			t.Fatalf("start session: %v", err)
		}
		for j, ch := range []string{"あ", "い", "あ"} {
			ms := int64(400 + 100*j)
			if _, err := st.LogAttempt(ctx, model.AttemptLog{
				SessionID:  id,
				SentenceID: "1",
				Char:       ch,
				Correct:    ch == "あ" || i == 2,
				TimeMs:     &ms,
				CreatedAt:  model.MillisOf(start),
			}); err != nil {
				t.Fatalf("log attempt: %v", err)
			}
		}
		rec := model.SessionRecord{ID: id, TotalChars: 3, CorrectChars: 2, MaxStreak: 2}
		if err := st.EndSession(ctx, rec, start.Add(time.Minute)); err != nil {
			t.Fatalf("end session: %v", err)
		}
		ids = append(ids, id)
	}

	for _, m := range []model.CharacterMastery{
		{Char: "あ", Correct: 6, AttemptCount: 6, TotalTimeMs: 3000, MasteryScore: 0.8, Level: model.LevelReviewing,
			LastSeen: model.MillisOf(now), NextReview: model.MillisOf(now.Add(time.Hour))},
		{Char: "い", Correct: 1, Incorrect: 2, AttemptCount: 3, TotalTimeMs: 1500, MasteryScore: 0.35, Level: model.LevelLearning,
			LastSeen: model.MillisOf(now), NextReview: model.MillisOf(now.Add(-time.Minute))},
	} {
		if err := st.UpsertMastery(ctx, m); err != nil {
			t.Fatalf("upsert mastery: %v", err)
		}
	}
	if _, err := st.RecordSentenceCompleted(ctx, model.DateOf(now), now); err != nil {
		t.Fatalf("record activity: %v", err)
	}
	return st, ids
}

func TestBuildReport(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.Local)
	st, ids := seedStore(t, now)

	report, err := BuildReport(context.Background(), st, model.StatsConfig{Last: 2}, now)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(report.Sessions))
	}
	if report.Sessions[0].ID != ids[1] || report.Sessions[1].ID != ids[2] {
		t.Fatalf("unexpected session ids: %+v", report.Sessions)
	}
	if !report.HasLast || report.LastSession.ID != ids[2] {
		t.Fatalf("unexpected last session: %+v", report.LastSession)
	}
	if len(report.Mastery) != 2 || report.DueCount != 1 || report.DayStreak != 1 {
		t.Fatalf("unexpected report: mastery=%d due=%d streak=%d", len(report.Mastery), report.DueCount, report.DayStreak)
	}
	if strings.Join(report.CurveUnits, ",") != "あ,い" {
		t.Fatalf("unexpected curve units: %v", report.CurveUnits)
	}
	agg := report.UnitSessions[ids[1]]["あ"]
	if agg.Correct != 2 || agg.TimeCount != 2 || agg.TimeSumMs != 1000 {
		t.Fatalf("unexpected aggregate: %+v", agg)
	}
	if _, ok := report.UnitSessions[ids[0]]; ok {
		t.Fatalf("sessions outside the window should not be aggregated")
	}

	var buf bytes.Buffer
	if err := Render(&buf, report, model.StatsConfig{CurveWindow: 2}, 60); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Summary", "Per-Kana Mastery", "Learning Curves", "Kana あ", "Kana い"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %q in report output", want)
		}
	}
}

func TestBuildReportFilters(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.Local)
	st, _ := seedStore(t, now)
	ctx := context.Background()

	due, err := BuildReport(ctx, st, model.StatsConfig{Due: true}, now)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(due.Mastery) != 1 || due.Mastery[0].Char != "い" {
		t.Fatalf("unexpected due rows: %+v", due.Mastery)
	}

	dueLearning, err := BuildReport(ctx, st, model.StatsConfig{Due: true, Level: "reviewing"}, now)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(dueLearning.Mastery) != 0 || dueLearning.DueCount != 1 {
		t.Fatalf("due and level filters should combine: rows=%+v due=%d", dueLearning.Mastery, dueLearning.DueCount)
	}

	reviewing, err := BuildReport(ctx, st, model.StatsConfig{Level: "Reviewing", Units: "ア"}, now)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(reviewing.Mastery) != 1 || reviewing.Mastery[0].Char != "あ" {
		t.Fatalf("unexpected level rows: %+v", reviewing.Mastery)
	}
	if strings.Join(reviewing.CurveUnits, ",") != "あ" {
		t.Fatalf("katakana unit filter should fold: %v", reviewing.CurveUnits)
	}

	if _, err := BuildReport(ctx, st, model.StatsConfig{Level: "expert"}, now); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
