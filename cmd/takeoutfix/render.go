package main

import (
	"strconv"
	"strings"

	"takeoutfix/internal/ledger"
	"takeoutfix/internal/matching"
	"takeoutfix/internal/reconcile"
)

func countRows(counts ledger.Counts, passes map[string]int) [][]string {
	rows := [][]string{
		{"Media files", strconv.Itoa(counts.Media)},
		{"Sidecars", strconv.Itoa(counts.Sidecars)},
		{"Matched", strconv.Itoa(counts.Matched)},
	}
	for _, pass := range matching.Passes {
		rows = append(rows, []string{"  " + pass.String(), strconv.Itoa(passes[pass.String()])})
	}
	rows = append(rows,
		[]string{"Unmatched media", strconv.Itoa(counts.UnmatchedMedia)},
		[]string{"Unmatched sidecars", strconv.Itoa(counts.UnmatchedSidecars)},
		[]string{"Already processed", strconv.Itoa(counts.Skipped)},
	)
	return rows
}

func renderRunSummary(s *reconcile.Summary) string {
	rows := countRows(s.Counts, s.Passes)
	if s.Archives > 0 {
		rows = append([][]string{
			{"Archives", strconv.Itoa(s.Archives)},
			{"Extracted files", strconv.Itoa(s.Extracted)},
		}, rows...)
	}
	if !s.DryRun {
		rows = append(rows,
			[]string{"Copied pairs", strconv.Itoa(s.Copied)},
			[]string{"Copied to failed", strconv.Itoa(s.CopiedFailed)},
			[]string{"Copy errors", strconv.Itoa(s.CopyErrors)},
			[]string{"Timestamps applied", strconv.Itoa(s.Enriched)},
			[]string{"No timestamp", strconv.Itoa(s.NoTimestamp)},
			[]string{"EXIF written", strconv.Itoa(s.EXIFWritten)},
			[]string{"Enrich errors", strconv.Itoa(s.EnrichErrors)},
		)
	}
	title := "Run summary"
	if s.DryRun {
		title = "Dry run summary"
	}

	var b strings.Builder
	b.WriteString(renderTable(title, []string{"Metric", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
	b.WriteString("\nOutput: " + s.OutputDir)
	for _, list := range s.Lists {
		b.WriteString("\nWrote " + list)
	}
	return b.String()
}

func renderPairs(pairs []matching.Pair) string {
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{p.MediaPath, p.MetadataPath, p.Pass.String()})
	}
	return renderTable("Pairs", []string{"Media", "Sidecar", "Pass"}, rows, nil)
}

func renderPaths(title string, paths []string) string {
	rows := make([][]string, 0, len(paths))
	for _, p := range paths {
		rows = append(rows, []string{p})
	}
	return renderTable(title, []string{"Path"}, rows, nil)
}
