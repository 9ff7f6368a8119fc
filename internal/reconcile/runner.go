package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"takeoutfix/internal/archive"
	"takeoutfix/internal/config"
	"takeoutfix/internal/discovery"
	"takeoutfix/internal/enrich"
	"takeoutfix/internal/ledger"
	"takeoutfix/internal/logging"
	"takeoutfix/internal/matching"
	"takeoutfix/internal/organizer"
	"takeoutfix/internal/preflight"
)

// Runner drives takeoutfix runs for one configuration.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *ledger.Store
	progress *Progress
	applier  enrich.TimestampApplier
	now      func() time.Time
	dryRun   bool
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLedger records runs and reads previously processed names from store.
func WithLedger(store *ledger.Store) Option {
	return func(r *Runner) { r.store = store }
}

// WithProgress draws terminal progress bars. A nil Progress disables them.
func WithProgress(p *Progress) Option {
	return func(r *Runner) { r.progress = p }
}

// WithTimestampApplier replaces the platform timestamp applier.
func WithTimestampApplier(a enrich.TimestampApplier) Option {
	return func(r *Runner) { r.applier = a }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithDryRun makes Run report what it would do without writing anything.
func WithDryRun(enabled bool) Option {
	return func(r *Runner) { r.dryRun = enabled }
}

// NewRunner constructs a Runner.
func NewRunner(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "reconcile"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a complete pass over the configured source directory.
func (r *Runner) Run(ctx context.Context) (summary *Summary, err error) {
	if r.cfg == nil {
		return nil, errors.New("reconcile: config is required")
	}
	started := r.now()
	cfg := r.cfg
	outputDir := cfg.ResolveOutputDir(started)
	summary = &Summary{
		SourceDir: cfg.Paths.SourceDir,
		OutputDir: outputDir,
		DryRun:    r.dryRun,
	}

	if err := preflight.FirstFailure(preflight.RunAll(cfg, outputDir)); err != nil {
		return nil, err
	}

	if !r.dryRun {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
		unlock, err := acquireLock(outputDir)
		if err != nil {
			return nil, err
		}
		defer func() {
			if uerr := unlock(); uerr != nil {
				r.logger.Debug("release lock failed", logging.Error(uerr))
			}
		}()
	}

	if r.store != nil {
		run, beginErr := r.store.BeginRun(ctx, cfg.Paths.SourceDir, outputDir, r.dryRun)
		if beginErr != nil {
			return nil, beginErr
		}
		summary.RunID = run.ID
		ctx = logging.WithRunID(ctx, run.ID)
		defer func() {
			// The run row is closed even when ctx was cancelled.
			finishCtx := context.WithoutCancel(ctx)
			if ferr := r.store.FinishRun(finishCtx, run.ID, summary.Counts, err); ferr != nil && err == nil {
				err = ferr
			}
		}()
	}
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("run started",
		logging.String("source_dir", cfg.Paths.SourceDir),
		logging.String("output_dir", outputDir),
		logging.Bool("dry_run", r.dryRun),
	)

	scanDir, cleanup, err := r.prepareScanDir(ctx, logger, outputDir, summary)
	if err != nil {
		return summary, err
	}
	defer cleanup()
	summary.ScanDir = scanDir

	inv, err := discovery.Scan(ctx, scanDir, outputDir)
	if err != nil {
		return summary, err
	}
	summary.Counts = countsFor(inv, nil)
	logger.Info("source scanned",
		logging.String(logging.FieldPhase, "discovery"),
		logging.Int("media", len(inv.Media)),
		logging.Int("sidecars", len(inv.Sidecars)),
		logging.Int("ignored", inv.Ignored),
	)
	if len(inv.Media) == 0 {
		return summary, fmt.Errorf("%w in %s", ErrNoMedia, scanDir)
	}

	processed := r.processedNames(ctx, logger, outputDir)
	result := matching.PairPaths(inv.Media, inv.Sidecars,
		matching.WithReporter(r.reporter(logger)),
		matching.WithProcessed(processed),
	)
	summary.Result = result
	summary.Counts = countsFor(inv, result)
	summary.Passes = passNames(result)
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	org := organizer.New(organizer.Options{
		OutputDir:    outputDir,
		FailedDir:    cfg.Output.FailedDir,
		CopySidecars: cfg.Output.CopySidecars,
		DryRun:       r.dryRun,
	}, logger)

	org.Progress = r.progress.callback("copying pairs")
	placements, failures, err := org.PlacePairs(ctx, result.Pairs)
	summary.Copied = len(placements)
	summary.CopyErrors += len(failures)
	if err != nil {
		return summary, err
	}

	if !r.dryRun {
		r.enrich(ctx, logger, placements, summary)
		if err := ctx.Err(); err != nil {
			return summary, err
		}
	}

	org.Progress = r.progress.callback("copying unmatched media")
	failedCopies, failures, err := org.PlaceUnmatched(ctx, result.UnmatchedMedia)
	summary.CopiedFailed = len(failedCopies)
	summary.CopyErrors += len(failures)
	if err != nil {
		return summary, err
	}

	if cfg.Output.WriteLists {
		lists, err := org.WriteLists(result)
		summary.Lists = lists
		if err != nil {
			return summary, err
		}
	}

	if r.store != nil && !r.dryRun {
		if err := r.store.RecordPairs(ctx, summary.RunID, pairRecords(result.Pairs, placements)); err != nil {
			return summary, err
		}
	}

	summary.Duration = r.now().Sub(started)
	summary.log(logger)
	return summary, nil
}

// Match pairs the files under the configured source directory without
// extracting archives or writing anything.
func (r *Runner) Match(ctx context.Context) (*MatchReport, error) {
	if r.cfg == nil {
		return nil, errors.New("reconcile: config is required")
	}
	cfg := r.cfg
	if result := preflight.CheckReadableDir("Source directory", cfg.Paths.SourceDir); !result.Passed {
		return nil, fmt.Errorf("%w: %s: %s", preflight.ErrFailed, result.Name, result.Detail)
	}
	logger := logging.WithContext(ctx, r.logger)
	report := &MatchReport{SourceDir: cfg.Paths.SourceDir}

	archives, err := archive.Find(cfg.Paths.SourceDir, cfg.Archives.Pattern)
	if err != nil {
		return nil, err
	}
	report.Archives = archives
	if len(archives) > 0 {
		logger.Info("archives present but not extracted for matching",
			logging.Int("archives", len(archives)),
		)
	}

	var exclude []string
	var processed []string
	if cfg.Paths.OutputDir != "" {
		exclude = append(exclude, cfg.Paths.OutputDir)
		processed = r.processedNames(ctx, logger, cfg.Paths.OutputDir)
	}
	inv, err := discovery.Scan(ctx, cfg.Paths.SourceDir, exclude...)
	if err != nil {
		return nil, err
	}
	report.Inventory = inv

	result := matching.PairPaths(inv.Media, inv.Sidecars,
		matching.WithReporter(r.reporter(logger)),
		matching.WithProcessed(processed),
	)
	report.Result = result
	report.Counts = countsFor(inv, result)
	report.Passes = passNames(result)
	return report, nil
}

// prepareScanDir extracts any Takeout archives and returns the directory to
// scan together with a cleanup func.
func (r *Runner) prepareScanDir(ctx context.Context, logger *slog.Logger, outputDir string, summary *Summary) (string, func(), error) {
	cfg := r.cfg
	noop := func() {}
	if !cfg.Archives.Extract {
		return cfg.Paths.SourceDir, noop, nil
	}
	archives, err := archive.Find(cfg.Paths.SourceDir, cfg.Archives.Pattern)
	if err != nil {
		return "", noop, err
	}
	summary.Archives = len(archives)
	if len(archives) == 0 {
		return cfg.Paths.SourceDir, noop, nil
	}

	var dest string
	if r.dryRun {
		dest, err = os.MkdirTemp("", "takeoutfix-*")
		if err != nil {
			return "", noop, fmt.Errorf("create extraction directory: %w", err)
		}
	} else {
		dest = filepath.Join(outputDir, archive.FlatDirName)
	}
	cleanup := func() {
		if !r.dryRun && cfg.Archives.KeepExtracted {
			return
		}
		if err := os.RemoveAll(dest); err != nil {
			logger.Debug("remove extraction directory failed", logging.String("path", dest), logging.Error(err))
		}
	}

	extractor := archive.NewExtractor(logger)
	extractor.Progress = r.progress.callback("extracting archives")
	extracted, err := extractor.Extract(ctx, archives, dest)
	if err != nil {
		cleanup()
		return "", noop, err
	}
	summary.Extracted = extracted.Files
	return dest, cleanup, nil
}

// processedNames unions the output directory listing with the names the
// ledger recorded for earlier runs into the same directory.
func (r *Runner) processedNames(ctx context.Context, logger *slog.Logger, outputDir string) []string {
	names, err := discovery.ProcessedNames(outputDir)
	if err != nil {
		logging.WarnWithContext(logger, "output directory listing failed", logging.EventProcessedNamesUnavailable,
			logging.String("dir", outputDir),
			logging.Error(err),
		)
	}
	if r.store == nil {
		return names
	}
	recorded, err := r.store.ProcessedNames(ctx, outputDir)
	if err != nil {
		logging.WarnWithContext(logger, "ledger lookup failed", logging.EventProcessedNamesUnavailable,
			logging.String("dir", outputDir),
			logging.Error(err),
		)
		return names
	}
	return append(names, recorded...)
}

func (r *Runner) reporter(logger *slog.Logger) matching.Reporter {
	reporters := matching.MultiReporter{newLogReporter(logger)}
	if r.progress != nil {
		reporters = append(reporters, r.progress)
	}
	return reporters
}

func (r *Runner) enrich(ctx context.Context, logger *slog.Logger, placements []organizer.Placement, summary *Summary) {
	cfg := r.cfg
	if !cfg.Enrich.ApplyTimestamps && !cfg.Enrich.InspectEXIF && !cfg.Enrich.WriteEXIF {
		return
	}
	enricher := enrich.New(enrich.Options{
		ApplyTimestamps: cfg.Enrich.ApplyTimestamps,
		InspectEXIF:     cfg.Enrich.InspectEXIF,
		WriteEXIF:       cfg.Enrich.WriteEXIF,
	}, r.applier, logger)

	progress := r.progress.callback("applying timestamps")
	for i, placement := range placements {
		if ctx.Err() != nil {
			return
		}
		outcome, err := enricher.Apply(placement.MediaDest, placement.Pair.MetadataPath)
		if outcome.EXIFWritten {
			summary.EXIFWritten++
		}
		switch {
		case err != nil:
			summary.EnrichErrors++
			logging.WarnWithContext(logger, "enrichment failed", logging.EventEnrichFailed,
				logging.Media(placement.MediaDest),
				logging.Sidecar(placement.Pair.MetadataPath),
				logging.Error(err),
			)
		case outcome.Source == enrich.SourceNone:
			summary.NoTimestamp++
		default:
			summary.Enriched++
		}
		if progress != nil {
			progress(i+1, len(placements))
		}
	}
}

func pairRecords(pairs []matching.Pair, placements []organizer.Placement) []ledger.PairRecord {
	byMedia := make(map[string]organizer.Placement, len(placements))
	for _, p := range placements {
		byMedia[p.Pair.MediaPath] = p
	}
	records := make([]ledger.PairRecord, 0, len(pairs))
	for _, pair := range pairs {
		placement := byMedia[pair.MediaPath]
		records = append(records, ledger.PairRecord{
			MediaPath:   pair.MediaPath,
			SidecarPath: pair.MetadataPath,
			Pass:        pair.Pass.String(),
			MediaDest:   placement.MediaDest,
			SidecarDest: placement.SidecarDest,
		})
	}
	return records
}
