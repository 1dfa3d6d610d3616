// Package main provides the CLI entrypoint for mojido.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/mojido/internal/config"
	"github.com/verte-zerg/mojido/internal/corpus"
	"github.com/verte-zerg/mojido/internal/model"
	"github.com/verte-zerg/mojido/internal/session"
	"github.com/verte-zerg/mojido/internal/store"
	"github.com/verte-zerg/mojido/internal/tui"
)

const (
	defaultHintDelay   = "2s"
	defaultCurveWindow = 5
	defaultBuildLimit  = 0
	defaultPlainWidth  = 80
)

var (
	practiceCorpus    string
	practiceHints     bool
	practiceHintDelay string
	practiceDebug     bool
	practiceSeed      int64

	statsPlain       bool
	statsLevel       string
	statsDue         bool
	statsLast        int
	statsCurveWindow int
	statsUnits       string

	buildIn    string
	buildOut   string
	buildLimit int
	fetchURL   string

	exportDir     string
	exportSinceID int64
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mojido",
		Short:         "Adaptive kana typing trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	addPracticeFlags(rootCmd)

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newCorpusCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newNextCmd())

	return rootCmd
}

func addPracticeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&practiceCorpus, "corpus", "", "corpus JSON file (default: built corpus if present, else built-in)")
	cmd.Flags().BoolVar(&practiceHints, "hints", true, "show romaji hints after a delay")
	cmd.Flags().StringVar(&practiceHintDelay, "hint-delay", defaultHintDelay, "delay before the romaji hint appears")
	cmd.Flags().BoolVar(&practiceDebug, "debug", false, "print the sentence selection trace to stderr (practice prints it on exit)")
	cmd.Flags().Int64Var(&practiceSeed, "seed", 0, "random seed for sentence selection (0: time based)")
}

// loadPracticeConfig merges the config file under explicitly set flags.
func loadPracticeConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "corpus", &practiceCorpus, fileCfg.Practice.Corpus)
	applyBoolConfig(cmd, "hints", &practiceHints, fileCfg.Practice.Hints)
	applyStringConfig(cmd, "hint-delay", &practiceHintDelay, fileCfg.Practice.HintDelay)
	applyBoolConfig(cmd, "debug", &practiceDebug, fileCfg.Practice.Debug)
	applyInt64Config(cmd, "seed", &practiceSeed, fileCfg.Practice.Seed)

	delay, err := time.ParseDuration(practiceHintDelay)
	if err != nil {
		return model.Config{}, fmt.Errorf("invalid hint delay %q: %w", practiceHintDelay, err)
	}
	if delay < 0 {
		return model.Config{}, fmt.Errorf("--hint-delay must be >= 0")
	}
	return model.Config{
		CorpusPath: resolveCorpusPath(practiceCorpus),
		Hints:      practiceHints,
		HintDelay:  delay,
		Debug:      practiceDebug,
		Seed:       practiceSeed,
	}, nil
}

// resolveCorpusPath prefers an explicit path, then a built corpus in the data
// directory. Empty means the built-in corpus.
func resolveCorpusPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	built := config.DefaultCorpusPath()
	if _, err := os.Stat(built); err == nil {
		return built
	}
	return ""
}

func loadCorpus(path string) ([]model.Sentence, error) {
	sentences, err := corpus.Load(path)
	if err != nil {
		if path == "" {
			return nil, fmt.Errorf("failed to load built-in corpus: %w", err)
		}
		return nil, fmt.Errorf("failed to load corpus %s: %w", path, err)
	}
	return sentences, nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
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

	ctx := context.Background()
	sess, err := session.Start(ctx, st)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.End(ctx); err != nil {
			logErrf("%v\n", err)
		}
	}()

	m := tui.NewModel(cfg, st, sentences, sess)
	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err = program.Run()
	// Diagnostics wait until the alternate screen is gone.
	m.FlushLog(os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func outputWidth(w io.Writer) int {
	if file, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(file.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultPlainWidth
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
