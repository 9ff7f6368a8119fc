//go:build unix

package enrich

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

type platformApplier struct{}

// Apply sets atime and mtime with nanosecond precision. Unix filesystems do
// not expose a settable creation time.
func (platformApplier) Apply(path string, t time.Time) (bool, error) {
	ts := unix.NsecToTimespec(t.UnixNano())
	if err := unix.UtimesNano(path, []unix.Timespec{ts, ts}); err != nil {
		return false, fmt.Errorf("set times on %s: %w", path, err)
	}
	return false, nil
}
