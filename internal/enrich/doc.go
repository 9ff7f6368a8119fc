// Package enrich applies sidecar metadata to copied media files.
//
// The capture time is taken from the sidecar (photoTakenTime, then
// creationTime) and, when neither is present, from the JPEG's EXIF DateTime.
// It is written as the file's access and modification time, and on Windows
// also as the creation time. EXIF blocks are read, never rewritten.
package enrich
