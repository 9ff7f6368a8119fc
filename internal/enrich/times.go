package enrich

import "time"

// TimestampApplier sets file times on the local filesystem.
type TimestampApplier interface {
	// Apply sets the access and modification time of path to t. It reports
	// whether the creation time was set as well.
	Apply(path string, t time.Time) (creationSet bool, err error)
}

// NewTimestampApplier returns the applier for the current platform.
func NewTimestampApplier() TimestampApplier {
	return platformApplier{}
}
