package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/mojido/internal/archive"
	"github.com/verte-zerg/mojido/internal/config"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the attempt log as zstd-compressed JSON lines",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportDir, "dir", "", "output directory (default: data directory)")
	cmd.Flags().Int64Var(&exportSinceID, "since-id", 0, "only export attempts with a greater id")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "dir", &exportDir, fileCfg.Export.Dir)
	dir := exportDir
	if dir == "" {
		dir = config.DefaultExportDir()
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	res, err := archive.Export(cmd.Context(), st, dir, exportSinceID)
	if err != nil {
		return fmt.Errorf("failed to export attempts: %w", err)
	}
	out := cmd.OutOrStdout()
	if res.Count == 0 {
		_, err = fmt.Fprintln(out, "No attempts to export.")
		return err
	}
	_, err = fmt.Fprintf(out, "Exported %d attempts to %s (last id %d)\n", res.Count, res.Path, res.LastID)
	return err
}
