package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/mojido/internal/model"
	"github.com/verte-zerg/mojido/internal/stats"
	"github.com/verte-zerg/mojido/internal/statsui"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show kana mastery and progress",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a plain-text report instead of the interactive view")
	cmd.Flags().StringVar(&statsLevel, "level", "", "only show kana at this level (new, learning, reviewing, mastered)")
	cmd.Flags().BoolVar(&statsDue, "due", false, "only show kana due for review")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit curves to the last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "window", defaultCurveWindow, "moving average window")
	cmd.Flags().StringVar(&statsUnits, "units", "", "comma separated kana for per-kana curves")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--window must be >= 1")
	}
	cfg := model.StatsConfig{
		Level:       statsLevel,
		Due:         statsDue,
		Plain:       statsPlain,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Units:       statsUnits,
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	out := cmd.OutOrStdout()
	if cfg.Plain || !isTerminal(out) {
		report, err := stats.BuildReport(context.Background(), st, cfg, time.Now())
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		return stats.Render(out, report, cfg, outputWidth(out))
	}

	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}
