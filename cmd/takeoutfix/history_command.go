package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"takeoutfix/internal/config"
	"takeoutfix/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded runs, or the pairs of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLedger(func(_ *config.Config, store *ledger.Store) error {
				if len(args) == 1 {
					return showRun(cmd, store, strings.TrimSpace(args[0]), jsonOutput)
				}
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					if runs == nil {
						runs = []ledger.Run{}
					}
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						run.ID,
						run.StartedAt.Local().Format("2006-01-02 15:04"),
						string(run.Status),
						yesNo(run.DryRun),
						strconv.Itoa(run.Counts.Matched),
						strconv.Itoa(run.Counts.UnmatchedMedia),
						run.OutputDir,
					})
				}
				fmt.Fprintln(out, renderTable("", []string{"ID", "Started", "Status", "Dry run", "Matched", "Unmatched", "Output"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of runs to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func showRun(cmd *cobra.Command, store *ledger.Store, id string, jsonOutput bool) error {
	run, err := store.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}
	pairs, err := store.ListPairs(cmd.Context(), id)
	if err != nil {
		return err
	}
	if jsonOutput {
		if pairs == nil {
			pairs = []ledger.PairRecord{}
		}
		return writeJSON(cmd, struct {
			*ledger.Run
			Pairs []ledger.PairRecord `json:"pairs"`
		}{run, pairs})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%s)\n", run.ID, run.Status)
	fmt.Fprintf(out, "Source: %s\nOutput: %s\n", run.SourceDir, run.OutputDir)
	if !run.FinishedAt.IsZero() {
		fmt.Fprintf(out, "Duration: %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Second))
	}
	if run.ErrorMessage != "" {
		fmt.Fprintf(out, "Error: %s\n", run.ErrorMessage)
	}
	if len(pairs) == 0 {
		fmt.Fprintln(out, "No pairs recorded")
		return nil
	}
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{p.MediaPath, p.SidecarPath, p.Pass, p.MediaDest})
	}
	fmt.Fprintln(out, renderTable("Pairs", []string{"Media", "Sidecar", "Pass", "Copied to"}, rows, nil))
	return nil
}
