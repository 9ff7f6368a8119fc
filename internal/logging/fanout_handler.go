package logging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// logSink is one destination of the run logger, such as the terminal or the
// state directory's debug file.
type logSink struct {
	name    string
	handler slog.Handler
}

// fanoutHandler sends every record to each sink that accepts its level. A
// sink that fails to write does not stop the others.
type fanoutHandler struct {
	sinks []logSink
}

func newFanoutHandler(sinks ...logSink) slog.Handler {
	live := make([]logSink, 0, len(sinks))
	for _, s := range sinks {
		if s.handler != nil {
			live = append(live, s)
		}
	}
	switch len(live) {
	case 0:
		return NoopHandler{}
	case 1:
		return live[0].handler
	}
	return &fanoutHandler{sinks: live}
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range h.sinks {
		if s.handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for idx, s := range h.sinks {
		if !s.handler.Enabled(ctx, record.Level) {
			continue
		}
		rec := record
		if idx < len(h.sinks)-1 {
			rec = record.Clone()
		}
		if err := s.handler.Handle(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("%s log: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(func(handler slog.Handler) slog.Handler { return handler.WithAttrs(attrs) })
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	return h.derive(func(handler slog.Handler) slog.Handler { return handler.WithGroup(name) })
}

func (h *fanoutHandler) derive(fn func(slog.Handler) slog.Handler) slog.Handler {
	next := make([]logSink, len(h.sinks))
	for i, s := range h.sinks {
		next[i] = logSink{name: s.name, handler: fn(s.handler)}
	}
	return &fanoutHandler{sinks: next}
}
