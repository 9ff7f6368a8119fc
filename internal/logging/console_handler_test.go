package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestPrettyHandlerOrdersHighlightFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.Warn("unmatched", slog.String("extra", "x"), slog.String(FieldReason, "no candidate"), slog.String(FieldMedia, "a.jpg"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus three fields, got %q", buf.String())
	}
	want := []string{"    - Media: a.jpg", "    - Reason: no candidate", "    - Extra: x"}
	for i, line := range want {
		if lines[i+1] != line {
			t.Fatalf("line %d = %q, want %q", i+1, lines[i+1], line)
		}
	}
}

func TestPrettyHandlerWithAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelDebug)
	logger := slog.New(newPrettyHandler(&buf, lvl, false)).With(slog.String(FieldComponent, "ledger")).WithGroup("run")

	logger.Debug("stored", slog.Int("pairs", 4))

	text := buf.String()
	if !strings.Contains(text, "[ledger]") {
		t.Fatalf("expected component in header, got %q", text)
	}
	if !strings.Contains(text, "    run.pairs: 4") {
		t.Fatalf("expected grouped key, got %q", text)
	}
}

func TestPrettyHandlerGroupsOnlyQualifyLaterAttrs(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelDebug)
	logger := slog.New(newPrettyHandler(&buf, lvl, false)).
		With(slog.String(FieldComponent, "reconcile"), slog.String("source", "/in")).
		WithGroup("run").
		With(slog.String("id", "abc")).
		WithGroup("")

	logger.Debug("started", slog.Int("files", 2))

	text := buf.String()
	if !strings.Contains(text, "[reconcile]") {
		t.Fatalf("component should stay ungrouped, got %q", text)
	}
	for _, want := range []string{"    source: /in", "    run.id: abc", "    run.files: 2"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in %q", want, text)
		}
	}
	if strings.Contains(text, "run.source") || strings.Contains(text, "run.component") {
		t.Fatalf("attrs added before the group were qualified: %q", text)
	}
}

func TestPrettyHandlerDedupesKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newPrettyHandler(&buf, new(slog.LevelVar), false)).With(slog.String("status", "old"))
	logger.Info("update", slog.String("status", "new"))
	if strings.Contains(buf.String(), "old") || !strings.Contains(buf.String(), "Status: new") {
		t.Fatalf("expected latest value only, got %q", buf.String())
	}
}

func TestFormatValueForKey(t *testing.T) {
	tests := []struct {
		key   string
		value slog.Value
		want  string
	}{
		{"dry_run", slog.BoolValue(true), "yes"},
		{"elapsed", slog.DurationValue(1500*time.Microsecond + 2*time.Second), "2.002s"},
		{"media", slog.StringValue("with space.jpg"), "with space.jpg"},
		{"error", slog.StringValue(strings.Repeat("x", 250)), strings.Repeat("x", 200) + "…"},
	}
	for _, tt := range tests {
		if got := formatValueForKey(tt.key, tt.value); got != tt.want {
			t.Fatalf("formatValueForKey(%s) = %q, want %q", tt.key, got, tt.want)
		}
	}
	if got := formatValue(slog.StringValue("a b")); got != `"a b"` {
		t.Fatalf("formatValue quoting = %q", got)
	}
}

func TestFanoutHandlerRespectsLevels(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	infoLvl := new(slog.LevelVar)
	debugLvl := new(slog.LevelVar)
	debugLvl.Set(slog.LevelDebug)

	handler := newFanoutHandler(
		logSink{name: "terminal", handler: newPrettyHandler(&infoBuf, infoLvl, false)},
		logSink{name: "file", handler: newPrettyHandler(&debugBuf, debugLvl, false)},
	)
	logger := slog.New(handler)
	logger.Debug("detail")
	logger.Info("summary")

	if strings.Contains(infoBuf.String(), "detail") {
		t.Fatalf("info handler received debug record: %q", infoBuf.String())
	}
	if !strings.Contains(debugBuf.String(), "detail") || !strings.Contains(debugBuf.String(), "summary") {
		t.Fatalf("debug handler missed records: %q", debugBuf.String())
	}
	if !handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("fanout should be enabled when any child is")
	}
}

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler().(NoopHandler); !ok {
		t.Fatal("expected noop handler for no children")
	}
	single := newPrettyHandler(&bytes.Buffer{}, new(slog.LevelVar), false)
	if newFanoutHandler(logSink{name: "gone"}, logSink{name: "terminal", handler: single}) != single {
		t.Fatal("expected single child returned directly")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestFanoutHandlerKeepsWritingAfterSinkFailure(t *testing.T) {
	var terminal bytes.Buffer
	lvl := new(slog.LevelVar)
	handler := newFanoutHandler(
		logSink{name: "file", handler: newPrettyHandler(failingWriter{}, lvl, false)},
		logSink{name: "terminal", handler: newPrettyHandler(&terminal, lvl, false)},
	).WithAttrs([]slog.Attr{slog.String(FieldComponent, "organizer")})

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "copied", 0)
	err := handler.Handle(context.Background(), record)
	if err == nil || !strings.Contains(err.Error(), "file log: disk full") {
		t.Fatalf("expected named sink error, got %v", err)
	}
	if !strings.Contains(terminal.String(), "[organizer]") || !strings.Contains(terminal.String(), "copied") {
		t.Fatalf("terminal sink missed the record: %q", terminal.String())
	}
}

func TestProgressSampler(t *testing.T) {
	s := NewProgressSampler(25)
	steps := []struct {
		phase string
		done  int
		want  bool
	}{
		{"resolve", 0, true},
		{"resolve", 1, false},
		{"resolve", 3, true},
		{"resolve", 4, false},
		{"sweep", 4, true},
		{"sweep", 12, true},
		{"sweep", 12, false},
	}
	for i, step := range steps {
		if got := s.ShouldLog(step.phase, step.done, 12); got != step.want {
			t.Fatalf("step %d ShouldLog(%s, %d) = %v, want %v", i, step.phase, step.done, got, step.want)
		}
	}
	var nilSampler *ProgressSampler
	if !nilSampler.ShouldLog("resolve", 1, 2) {
		t.Fatal("nil sampler should always log")
	}
}
