package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/mojido/internal/kana"
	"github.com/verte-zerg/mojido/internal/model"
)

const (
	sparkChars   = " .:-=+*#%@"
	weakestShown = 5
)

// SessionMetrics computes kana per minute and accuracy for an ended session.
func SessionMetrics(rec model.SessionRecord) (kpm, accuracy float64) {
	if rec.TotalChars > 0 {
		accuracy = float64(rec.CorrectChars) / float64(rec.TotalChars)
	}
	durationMs := int64(rec.EndedAt - rec.StartedAt)
	if rec.EndedAt.IsZero() || durationMs <= 0 {
		return 0, accuracy
	}
	kpm = float64(rec.CorrectChars) / (float64(durationMs) / 60000.0)
	return kpm, accuracy
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := seriesRange(values)
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	top := float64(len(sparkChars) - 1)
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * top))
		b.WriteByte(sparkChars[max(0, min(len(sparkChars)-1, idx))])
	}
	return b.String()
}

// RenderSummary prints the profile, streaks and review backlog.
func RenderSummary(w io.Writer, r Report) error {
	p := r.Profile
	lines := []string{
		"Summary",
		fmt.Sprintf("Skill: %.0f%%  Target difficulty: %.2f  Speed baseline: %.0f ms",
			p.OverallSkill*100, p.CurrentDifficulty, p.SpeedBaselineMs),
		fmt.Sprintf("Practice time: %s  Kana typed: %d",
			(time.Duration(p.TotalPracticeMs) * time.Millisecond).Round(time.Second), p.CharsTypedTotal),
		fmt.Sprintf("Day streak: %d", r.DayStreak),
	}
	if r.HasLast {
		_, acc := SessionMetrics(r.LastSession)
		lines = append(lines, fmt.Sprintf("Last session: %.1f%% accuracy, max streak %d", acc*100, r.LastSession.MaxStreak))
	}
	lines = append(lines,
		fmt.Sprintf("Due for review: %d", r.DueCount),
		"Levels: "+levelCounts(r.AllMastery),
	)
	if weak := WeakestUnits(r.AllMastery, weakestShown); len(weak) > 0 {
		parts := make([]string, len(weak))
		for i, m := range weak {
			parts[i] = fmt.Sprintf("%s (%.2f)", m.Char, m.MasteryScore)
		}
		lines = append(lines, "Weakest: "+strings.Join(parts, ", "))
	}
	if len(r.Sessions) > 1 {
		accs := make([]float64, len(r.Sessions))
		for i, s := range r.Sessions {
			_, accs[i] = SessionMetrics(s)
		}
		lines = append(lines, "Accuracy trend: "+Sparkline(accs))
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func levelCounts(rows []model.CharacterMastery) string {
	counts := map[model.Level]int{}
	for _, m := range rows {
		counts[m.Level]++
	}
	levels := []model.Level{model.LevelNew, model.LevelLearning, model.LevelReviewing, model.LevelMastered}
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = fmt.Sprintf("%s %d", l, counts[l])
	}
	return strings.Join(parts, ", ")
}

// MasteryHeaders names the columns of MasteryRows.
var MasteryHeaders = []string{"Kana", "Romaji", "Level", "Score", "Accuracy", "Avg (ms)", "Best (ms)", "Answers", "Review"}

// MasteryRows formats mastery rows as table cells.
func MasteryRows(rows []model.CharacterMastery, now time.Time) [][]string {
	out := make([][]string, 0, len(rows))
	for _, m := range rows {
		best := "-"
		if m.BestTimeMs != nil {
			best = fmt.Sprintf("%d", *m.BestTimeMs)
		}
		out = append(out, []string{
			m.Char,
			kana.Romanize(kana.Tokenize(m.Char)),
			string(m.Level),
			fmt.Sprintf("%.2f", m.MasteryScore),
			fmt.Sprintf("%.1f%%", m.Accuracy()*100),
			fmt.Sprintf("%.0f", m.AvgTimeMs()),
			best,
			fmt.Sprintf("%d", m.Attempts()),
			ReviewLabel(m, now),
		})
	}
	return out
}

// ReviewLabel describes when a unit is next due.
func ReviewLabel(m model.CharacterMastery, now time.Time) string {
	if m.NextReview.IsZero() {
		return "-"
	}
	wait := m.NextReview.Time().Sub(now)
	if wait <= 0 {
		return "due"
	}
	switch {
	case wait < time.Hour:
		return fmt.Sprintf("in %dm", int(math.Ceil(wait.Minutes())))
	case wait < 48*time.Hour:
		return fmt.Sprintf("in %dh", int(math.Ceil(wait.Hours())))
	default:
		return fmt.Sprintf("in %dd", int(math.Ceil(wait.Hours()/24)))
	}
}

// RenderMasteryTable prints per-kana mastery.
func RenderMasteryTable(w io.Writer, rows []model.CharacterMastery, now time.Time) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No kana stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Kana Mastery"); err != nil {
		return err
	}
	rightAlign := map[int]bool{3: true, 4: true, 5: true, 6: true, 7: true}
	for _, line := range formatTable(MasteryHeaders, MasteryRows(rows, now), rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCurves prints learning curves for speed and accuracy.
func RenderCurves(w io.Writer, sessions []model.SessionRecord, window, totalWidth, height int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	kpms := make([]float64, len(sessions))
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		kpm, acc := SessionMetrics(s)
		kpms[i] = kpm
		accs[i] = acc * 100
	}
	return PlotSeries(w, "Learning Curves", []Series{
		{Name: "Kana/min", Values: MovingAverage(kpms, window)},
		{Name: "Accuracy", Values: MovingAverage(accs, window)},
	}, PlotOptions{Width: plotWidth(totalWidth), Height: height, Color: useColor})
}

// RenderUnitCurves prints accuracy and response time curves per unit.
func RenderUnitCurves(w io.Writer, sessions []model.SessionRecord, perSession map[int64]map[string]model.UnitAggregate, units []string, window, totalWidth, height int, useColor bool) error {
	if len(units) == 0 || len(sessions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Per-Kana Curves"); err != nil {
		return err
	}
	for _, unit := range units {
		accs := make([]float64, len(sessions))
		times := make([]float64, len(sessions))
		for i, s := range sessions {
			agg, ok := perSession[s.ID][unit]
			if !ok {
				continue
			}
			accs[i] = agg.Accuracy() * 100
			times[i] = agg.AvgTimeMs()
		}
		if err := PlotSeries(w, "Kana "+unit, []Series{
			{Name: "Accuracy", Values: MovingAverage(accs, window)},
			{Name: "Time", Values: MovingAverage(times, window)},
		}, PlotOptions{Width: plotWidth(totalWidth), Height: height, Color: useColor}); err != nil {
			return err
		}
	}
	return nil
}

// Render prints the full plain-text report.
func Render(w io.Writer, r Report, cfg model.StatsConfig, totalWidth int) error {
	if err := RenderSummary(w, r); err != nil {
		return err
	}
	if err := RenderMasteryTable(w, r.Mastery, r.Now); err != nil {
		return err
	}
	if err := RenderCurves(w, r.Sessions, cfg.CurveWindow, totalWidth, 0, false); err != nil {
		return err
	}
	return RenderUnitCurves(w, r.Sessions, r.UnitSessions, r.CurveUnits, cfg.CurveWindow, totalWidth, 0, false)
}

func plotWidth(totalWidth int) int {
	if totalWidth <= 0 {
		return 0
	}
	return PlotWidthFor(totalWidth)
}
