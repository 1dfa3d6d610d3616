package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/mojido/internal/adaptive"
	"github.com/verte-zerg/mojido/internal/kana"
	"github.com/verte-zerg/mojido/internal/model"
	"github.com/verte-zerg/mojido/internal/store"
)

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Print the sentence practice would pick now",
		Args:  cobra.NoArgs,
		RunE:  runNextCmd,
	}
	addPracticeFlags(cmd)
	return cmd
}

func runNextCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadPracticeConfig(cmd)
	if err != nil {
		return err
	}
	sentences, err := loadCorpus(cfg.CorpusPath)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	return printNext(cmd.Context(), cmd.OutOrStdout(), st, sentences, cfg, time.Now())
}

func printNext(ctx context.Context, w io.Writer, st *store.Store, sentences []model.Sentence, cfg model.Config, now time.Time) error {
	profile, err := st.LoadProfile(ctx)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	rows, err := st.AllMastery(ctx)
	if err != nil {
		return fmt.Errorf("failed to load mastery: %w", err)
	}
	recent, err := st.RecentSentenceIDs(ctx, adaptive.RecentWindow)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	lookup := adaptive.NewMasteryLookup(rows)
	sel := adaptive.NewSelector(cfg.Seed).Select(profile, sentences, lookup, recent, now)
	if len(sel.Sentence.Tokens) == 0 {
		return errors.New("no sentence available: " + sel.Reason)
	}

	lines := []string{
		sel.Sentence.Surface(),
		sel.Sentence.Reading(),
		kana.Romanize(kana.Tokenize(sel.Sentence.Reading())),
		fmt.Sprintf("id=%s difficulty=%.2f reason=%s", sel.Sentence.ID, sel.Difficulty(lookup), sel.Reason),
	}
	if cfg.Debug {
		lines = append(lines, sel.Trace()...)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
