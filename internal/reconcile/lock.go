package reconcile

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is created inside the output directory while a run owns it.
const LockFileName = ".takeoutfix.lock"

// acquireLock takes the output directory lock without blocking. The returned
// release func is safe to call more than once.
func acquireLock(outputDir string) (func() error, error) {
	lock := flock.New(filepath.Join(outputDir, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, outputDir)
	}
	return lock.Unlock, nil
}
