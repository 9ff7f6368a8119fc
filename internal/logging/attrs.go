package logging

import (
	"context"
	"log/slog"
	"time"
)

type Attr = slog.Attr

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

// Media and Sidecar tag the two halves of a pair.
func Media(path string) Attr { return slog.String(FieldMedia, path) }

func Sidecar(path string) Attr { return slog.String(FieldSidecar, path) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Args converts attributes into the variadic form slog methods accept.
func Args(attrs ...Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger tags logger with a component name. A nil logger yields a
// tagged no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// EventType classifies a warning. Each known event carries a default hint
// and impact so the console and JSON logs say what to do about it.
type EventType string

const (
	EventCopyFailed                EventType = "copy_failed"
	EventTimestampMissing          EventType = "timestamp_missing"
	EventEnrichFailed              EventType = "enrich_failed"
	EventEXIFWriteFailed           EventType = "exif_write_failed"
	EventFileErrors                EventType = "file_errors"
	EventProcessedNamesUnavailable EventType = "processed_names_unavailable"
)

type eventDefaults struct {
	hint   string
	impact string
}

var eventCatalog = map[EventType]eventDefaults{
	EventCopyFailed: {
		hint:   "check free space and permissions on the output directory",
		impact: "file is missing from the output directory",
	},
	EventTimestampMissing: {
		hint:   "sidecar has neither photoTakenTime nor creationTime",
		impact: "file keeps its copied modification time",
	},
	EventEnrichFailed: {
		hint:   "check that the copied file is writable",
		impact: "file keeps its copied modification time",
	},
	EventEXIFWriteFailed: {
		hint:   "file may not be a baseline JPEG or its EXIF block is damaged",
		impact: "file keeps its original EXIF data",
	},
	EventFileErrors: {
		hint:   "see the debug log for each failed file",
		impact: "some outputs are incomplete",
	},
	EventProcessedNamesUnavailable: {
		hint:   "check the output directory and the ledger database",
		impact: "previously processed sidecars may be paired again",
	},
}

const (
	defaultErrorHint = "check logs for details"
	defaultImpact    = "run continues with this file skipped"
)

func hasAttrKey(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// WarnWithContext logs a warning that always carries event_type, error_hint
// and impact. Fields the caller left out come from the event catalog.
func WarnWithContext(logger *slog.Logger, msg string, event EventType, attrs ...Attr) {
	if logger == nil {
		return
	}
	defaults, ok := eventCatalog[event]
	if !ok {
		defaults = eventDefaults{hint: defaultErrorHint, impact: defaultImpact}
	}
	if !hasAttrKey(attrs, FieldEventType) {
		attrs = append(attrs, String(FieldEventType, string(event)))
	}
	if !hasAttrKey(attrs, FieldErrorHint) {
		attrs = append(attrs, String(FieldErrorHint, defaults.hint))
	}
	if !hasAttrKey(attrs, FieldImpact) {
		attrs = append(attrs, String(FieldImpact, defaults.impact))
	}
	logger.Warn(msg, Args(attrs...)...)
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }
