// Package config loads, normalizes, and validates takeoutfix configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as TAKEOUTFIX_SOURCE_DIR.
// The Config type gathers every knob the reconcile workflow and CLI need so
// the source, output, and state directories are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
