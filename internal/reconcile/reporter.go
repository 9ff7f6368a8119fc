package reconcile

import (
	"log/slog"

	"takeoutfix/internal/logging"
	"takeoutfix/internal/matching"
)

// logReporter turns pairing checkpoints into log records. Per-file events are
// debug records; resolve progress is sampled at info level.
type logReporter struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	total   int
	done    int
}

func newLogReporter(logger *slog.Logger) *logReporter {
	return &logReporter{
		logger:  logging.NewComponentLogger(logger, "matching"),
		sampler: logging.NewProgressSampler(25),
	}
}

func (r *logReporter) PhaseStarted(phase matching.Phase, total int) {
	r.total, r.done = total, 0
	r.logger.Debug("phase started", logging.String(logging.FieldPhase, string(phase)), logging.Int("total", total))
}

func (r *logReporter) PhaseFinished(phase matching.Phase, count int) {
	r.logger.Info("phase finished", logging.String(logging.FieldPhase, string(phase)), logging.Int("count", count))
}

func (r *logReporter) PairConfirmed(pair matching.Pair) {
	r.advance()
	r.logger.Debug("pair confirmed",
		logging.String(logging.FieldPass, pair.Pass.String()),
		logging.String(logging.FieldMedia, pair.MediaPath),
		logging.String(logging.FieldSidecar, pair.MetadataPath),
	)
}

func (r *logReporter) Unmatched(side matching.Side, path string, reason matching.Reason) {
	if side == matching.SideMetadata {
		r.advance()
	}
	r.logger.Debug("unmatched",
		logging.String(logging.FieldSide, string(side)),
		logging.String("path", path),
		logging.String(logging.FieldReason, string(reason)),
	)
}

func (r *logReporter) advance() {
	r.done++
	if r.sampler.ShouldLog(string(matching.PhaseResolve), r.done, r.total) {
		r.logger.Info("resolving sidecars",
			logging.String(logging.FieldPhase, string(matching.PhaseResolve)),
			logging.Int("processed", r.done),
			logging.Int("total", r.total),
		)
	}
}
