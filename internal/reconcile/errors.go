package reconcile

import "errors"

var (
	// ErrLocked reports that another run holds the output directory lock.
	ErrLocked = errors.New("output directory is locked by another run")
	// ErrNoMedia reports a source without any recognized media file.
	ErrNoMedia = errors.New("no media files found")
)
