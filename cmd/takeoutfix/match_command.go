package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"takeoutfix/internal/config"
	"takeoutfix/internal/ledger"
	"takeoutfix/internal/logging"
	"takeoutfix/internal/reconcile"
)

type matchJSON struct {
	*reconcile.MatchReport
	Pairs             []pairJSON `json:"pairs"`
	UnmatchedMedia    []string   `json:"unmatched_media"`
	UnmatchedSidecars []string   `json:"unmatched_sidecars"`
	Skipped           []string   `json:"skipped"`
}

type pairJSON struct {
	Media   string `json:"media"`
	Sidecar string `json:"sidecar"`
	Pass    string `json:"pass"`
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var (
		showPairs     bool
		showUnmatched bool
		jsonOutput    bool
	)

	cmd := &cobra.Command{
		Use:   "match [source]",
		Short: "Pair media with sidecars and report the result without copying",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyPathOverrides(cfg, args, ""); err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			var report *reconcile.MatchReport
			err = ctx.withLedger(func(_ *config.Config, store *ledger.Store) error {
				var matchErr error
				report, matchErr = reconcile.NewRunner(cfg, logger, reconcile.WithLedger(store)).Match(cmd.Context())
				return matchErr
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, toMatchJSON(report))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable("Match summary", []string{"Metric", "Count"},
				countRows(report.Counts, report.Passes), []columnAlignment{alignLeft, alignRight}))
			if len(report.Archives) > 0 {
				fmt.Fprintf(out, "%d archive(s) found but not extracted; `takeoutfix run` extracts them first\n", len(report.Archives))
			}
			if showPairs && len(report.Result.Pairs) > 0 {
				fmt.Fprintln(out, renderPairs(report.Result.Pairs))
			}
			if showUnmatched {
				if len(report.Result.UnmatchedMedia) > 0 {
					fmt.Fprintln(out, renderPaths("Unmatched media", report.Result.UnmatchedMedia))
				}
				if len(report.Result.UnmatchedMetadata) > 0 {
					fmt.Fprintln(out, renderPaths("Unmatched sidecars", report.Result.UnmatchedMetadata))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showPairs, "pairs", false, "List every confirmed pair")
	cmd.Flags().BoolVar(&showUnmatched, "unmatched", false, "List unmatched media and sidecars")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the full match result as JSON")
	return cmd
}

func toMatchJSON(report *reconcile.MatchReport) matchJSON {
	out := matchJSON{
		MatchReport:       report,
		Pairs:             make([]pairJSON, 0, len(report.Result.Pairs)),
		UnmatchedMedia:    nonNil(report.Result.UnmatchedMedia),
		UnmatchedSidecars: nonNil(report.Result.UnmatchedMetadata),
		Skipped:           nonNil(report.Result.Skipped),
	}
	for _, p := range report.Result.Pairs {
		out.Pairs = append(out.Pairs, pairJSON{Media: p.MediaPath, Sidecar: p.MetadataPath, Pass: p.Pass.String()})
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
