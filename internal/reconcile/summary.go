package reconcile

import (
	"log/slog"
	"time"

	"takeoutfix/internal/discovery"
	"takeoutfix/internal/ledger"
	"takeoutfix/internal/logging"
	"takeoutfix/internal/matching"
)

// Summary describes a finished run.
type Summary struct {
	RunID     string         `json:"run_id,omitempty"`
	SourceDir string         `json:"source_dir"`
	ScanDir   string         `json:"scan_dir"`
	OutputDir string         `json:"output_dir"`
	DryRun    bool           `json:"dry_run"`
	Archives  int            `json:"archives"`
	Extracted int            `json:"extracted"`
	Counts    ledger.Counts  `json:"counts"`
	Passes    map[string]int `json:"passes"`

	Copied       int `json:"copied"`
	CopiedFailed int `json:"copied_failed"`
	CopyErrors   int `json:"copy_errors"`

	Enriched     int `json:"enriched"`
	NoTimestamp  int `json:"no_timestamp"`
	EXIFWritten  int `json:"exif_written"`
	EnrichErrors int `json:"enrich_errors"`

	Lists    []string      `json:"lists,omitempty"`
	Duration time.Duration `json:"duration_ns"`

	Result *matching.Result `json:"-"`
}

// MatchReport is the outcome of a pairing-only pass.
type MatchReport struct {
	SourceDir string               `json:"source_dir"`
	Archives  []string             `json:"archives,omitempty"`
	Inventory *discovery.Inventory `json:"-"`
	Counts    ledger.Counts        `json:"counts"`
	Passes    map[string]int       `json:"passes"`
	Result    *matching.Result     `json:"-"`
}

func countsFor(inv *discovery.Inventory, result *matching.Result) ledger.Counts {
	var counts ledger.Counts
	if inv != nil {
		counts.Media = len(inv.Media)
		counts.Sidecars = len(inv.Sidecars)
	}
	if result != nil {
		counts.Matched = len(result.Pairs)
		counts.UnmatchedMedia = len(result.UnmatchedMedia)
		counts.UnmatchedSidecars = len(result.UnmatchedMetadata)
		counts.Skipped = len(result.Skipped)
	}
	return counts
}

func passNames(result *matching.Result) map[string]int {
	counts := result.PassCounts()
	names := make(map[string]int, len(matching.Passes))
	for _, pass := range matching.Passes {
		names[pass.String()] = counts[pass]
	}
	return names
}

func (s *Summary) log(logger *slog.Logger) {
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "run_summary"),
		logging.String("output_dir", s.OutputDir),
		logging.Int("media", s.Counts.Media),
		logging.Int("sidecars", s.Counts.Sidecars),
		logging.Int("matched", s.Counts.Matched),
		logging.Int("unmatched_media", s.Counts.UnmatchedMedia),
		logging.Int("unmatched_sidecars", s.Counts.UnmatchedSidecars),
		logging.Int("skipped", s.Counts.Skipped),
		logging.Duration("duration", s.Duration),
	}
	for _, pass := range matching.Passes {
		attrs = append(attrs, logging.Int("pass_"+pass.String(), s.Passes[pass.String()]))
	}
	if s.DryRun {
		attrs = append(attrs, logging.Bool("dry_run", true))
	} else {
		attrs = append(attrs,
			logging.Int("copied", s.Copied),
			logging.Int("copied_failed", s.CopiedFailed),
			logging.Int("enriched", s.Enriched),
			logging.Int("exif_written", s.EXIFWritten),
		)
	}
	logger.Info("run complete", logging.Args(attrs...)...)
	if s.CopyErrors > 0 || s.EnrichErrors > 0 {
		logging.WarnWithContext(logger, "run finished with file errors", logging.EventFileErrors,
			logging.Int("copy_errors", s.CopyErrors),
			logging.Int("enrich_errors", s.EnrichErrors),
		)
	}
}
