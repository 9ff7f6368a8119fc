// Package main hosts the takeoutfix CLI.
//
// The Cobra command tree loads configuration once, applies per-invocation
// flag overrides, and hands the work to internal/reconcile. Results are
// rendered as tables for people or as JSON for scripts.
package main
