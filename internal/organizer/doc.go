// Package organizer places the outcome of a pairing run into the output
// directory: paired media (and optionally their sidecars) at the top level,
// media without a sidecar under the failed directory, and plain-text lists
// of everything that did not pair.
package organizer
