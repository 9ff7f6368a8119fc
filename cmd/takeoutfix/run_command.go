package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"takeoutfix/internal/ledger"
	"takeoutfix/internal/logging"
	"takeoutfix/internal/reconcile"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		outputFlag   string
		dryRun       bool
		noSidecars   bool
		noTimestamps bool
		noEXIF       bool
		noExtract    bool
		jsonOutput   bool
	)

	cmd := &cobra.Command{
		Use:   "run [source]",
		Short: "Pair media with sidecars and copy them into the output directory",
		Long: `Scan the source directory (extracting takeout-*.zip archives first),
pair every media file with its JSON sidecar, copy the pairs into the output
directory and apply the sidecar capture time to each copied file. Media
without a sidecar are copied into the failed directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyPathOverrides(cfg, args, outputFlag); err != nil {
				return err
			}
			if noSidecars {
				cfg.Output.CopySidecars = false
			}
			if noTimestamps {
				cfg.Enrich.ApplyTimestamps = false
			}
			if noEXIF {
				cfg.Enrich.WriteEXIF = false
			}
			if noExtract {
				cfg.Archives.Extract = false
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := ledger.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			opts := []reconcile.Option{
				reconcile.WithLedger(store),
				reconcile.WithDryRun(dryRun),
			}
			if !jsonOutput {
				if progress := reconcile.NewProgress(os.Stderr); progress != nil {
					opts = append(opts, reconcile.WithProgress(progress))
				}
			}

			summary, err := reconcile.NewRunner(cfg, logger, opts...).Run(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, summary)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRunSummary(summary))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output directory (default: Output-<timestamp> inside the source)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report what would happen without copying anything")
	cmd.Flags().BoolVar(&noSidecars, "no-copy-sidecars", false, "Copy media only, leaving sidecars out of the output")
	cmd.Flags().BoolVar(&noTimestamps, "no-timestamps", false, "Do not apply sidecar capture times to copied media")
	cmd.Flags().BoolVar(&noEXIF, "no-exif", false, "Do not embed sidecar metadata into copied JPEGs")
	cmd.Flags().BoolVar(&noExtract, "no-extract", false, "Scan the source as-is without extracting archives")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the run summary as JSON")
	return cmd
}
