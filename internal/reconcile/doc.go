// Package reconcile runs the full takeoutfix pipeline for one source
// directory: preflight, output lock, archive extraction, discovery, pairing,
// placement, enrichment and the ledger record.
//
// Runner.Run performs a complete run; Runner.Match stops after pairing and
// touches nothing on disk.
package reconcile
