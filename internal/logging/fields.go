package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent names the package or subsystem emitting a record.
	FieldComponent = "component"
	// FieldRunID carries the ledger identifier of the current reconcile run.
	FieldRunID = "run_id"
	// FieldPhase names the matching phase (index, resolve, sweep).
	FieldPhase = "phase"
	// FieldPass names the resolution pass that confirmed a pair.
	FieldPass = "pass"
	// FieldSide distinguishes media from metadata in unmatched reports.
	FieldSide = "side"

	FieldMedia   = "media"
	FieldSidecar = "sidecar"
	FieldReason  = "reason"

	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
	FieldImpact    = "impact"
	// FieldAlert flags records that should stand out in console output.
	FieldAlert = "alert"
)

type runIDKey struct{}

// WithRunID stores the run identifier on the context.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the run identifier stored by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}

// WithContext returns a logger tagged with the fields carried on ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := RunIDFromContext(ctx); ok {
		return logger.With(slog.String(FieldRunID, id))
	}
	return logger
}
