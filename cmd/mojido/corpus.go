package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/mojido/internal/config"
	"github.com/verte-zerg/mojido/internal/corpus"
)

func newCorpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Build practice corpora",
	}

	build := &cobra.Command{
		Use:   "build",
		Short: "Build a corpus from a Tatoeba-style TSV file",
		Args:  cobra.NoArgs,
		RunE:  runCorpusBuildCmd,
	}
	build.Flags().StringVar(&buildIn, "in", "", "source TSV (id<TAB>...<TAB>text), optionally .bz2")
	build.Flags().StringVar(&buildOut, "out", "", "output corpus JSON (default: data directory)")
	build.Flags().IntVar(&buildLimit, "limit", defaultBuildLimit, "stop after N sentences (0: no limit)")
	_ = build.MarkFlagRequired("in")

	fetch := &cobra.Command{
		Use:   "fetch",
		Short: "Download the Tatoeba Japanese export and build a corpus from it",
		Args:  cobra.NoArgs,
		RunE:  runCorpusFetchCmd,
	}
	fetch.Flags().StringVar(&fetchURL, "url", corpus.TatoebaURL, "source URL")
	fetch.Flags().StringVar(&buildOut, "out", "", "output corpus JSON (default: data directory)")
	fetch.Flags().IntVar(&buildLimit, "limit", defaultBuildLimit, "stop after N sentences (0: no limit)")

	cmd.AddCommand(build, fetch)
	return cmd
}

func runCorpusBuildCmd(cmd *cobra.Command, _ []string) error {
	return buildCorpus(cmd.OutOrStdout(), buildIn, outputPath(buildOut), buildLimit)
}

func runCorpusFetchCmd(cmd *cobra.Command, _ []string) error {
	logErrln("Fetching corpus source...")
	dl, err := corpus.Fetch(cmd.Context(), config.DefaultCorpusCacheDir(), fetchURL)
	if err != nil {
		return fmt.Errorf("failed to fetch corpus source: %w", err)
	}
	if dl.Cached {
		logErrf("Using cached source %s\n", dl.Path)
	} else {
		logErrf("Downloaded %s\n", dl.Path)
	}
	return buildCorpus(cmd.OutOrStdout(), dl.Path, outputPath(buildOut), buildLimit)
}

func outputPath(p string) string {
	if p == "" {
		return config.DefaultCorpusPath()
	}
	return p
}

func buildCorpus(w io.Writer, in, out string, limit int) error {
	if limit < 0 {
		return fmt.Errorf("--limit must be >= 0")
	}
	src, err := corpus.OpenSource(in)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			// Best-effort close for read-only source.
			_ = cerr
		}
	}()

	logErrln("Loading tokenizer dictionary...")
	builder, err := corpus.NewBuilder()
	if err != nil {
		return fmt.Errorf("failed to create tokenizer: %w", err)
	}
	sentences, stat, err := builder.Build(src, limit)
	if err != nil {
		return fmt.Errorf("failed to build corpus: %w", err)
	}
	if err := corpus.Write(out, sentences); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	_, err = fmt.Fprintf(w, "Read %d lines, kept %d sentences (%d unsuitable, %d duplicates)\nWrote %s\n",
		stat.Read, stat.Kept, stat.Skipped, stat.Duplicates, out)
	return err
}
