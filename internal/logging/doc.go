// Package logging assembles the slog loggers used by takeoutfix.
//
// It owns the console and JSON handlers, a fan-out handler that lets a run
// write human-readable lines to the terminal while a JSON copy lands in the
// state directory, and the standard attribute keys that matching and
// reconcile code attach to records. NewNop returns a logger for tests and
// wiring that must not fail.
package logging
