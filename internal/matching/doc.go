// Package matching pairs exported media files with the JSON sidecars that
// describe them, using nothing but the file names.
//
// Export tools mangle sidecar names in several ways: the media extension is
// kept in the middle of the name (IMG_1.jpg.json), duplicate counters move
// from the stem to the end (IMG_1(1).jpg vs IMG_1.jpg(1).json), long names
// lose their last character, and edited copies gain a "-edited" marker. The
// package reduces every name to a FilenameKey, indexes the media keys once and
// resolves each sidecar through a fixed sequence of passes, from strict tuple
// equality down to set-based index comparison against truncated cores.
//
// The engine is synchronous and performs no I/O. Callers feed it two path
// collections and receive a Result holding the confirmed pairs plus the
// unmatched paths on both sides. Progress is surfaced through the Reporter
// interface so the CLI can attach loggers or progress bars without the engine
// knowing about either.
package matching
