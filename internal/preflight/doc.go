// Package preflight checks that the directories a run depends on are usable
// before any file is touched.
//
// These checks run in two contexts:
//   - reconcile calls RunAll before a run and stops on the first failure.
//   - The CLI "config validate" command prints every result as a table.
package preflight
