// Package ledger persists reconcile runs and the pairs they produced in a
// SQLite database under the state directory.
//
// The ledger backs the history command and supplies the names a previous run
// already wrote into an output directory, so a re-run can skip them even when
// sidecars were not copied.
package ledger
