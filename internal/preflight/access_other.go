//go:build !unix

package preflight

import (
	"errors"
	"io"
	"os"
)

const (
	accessRead      uint32 = 1
	accessReadWrite uint32 = 3
)

// access approximates access(2): listing proves read access and creating a
// temp file proves write access.
func access(path string, mode uint32) error {
	dir, err := os.Open(path)
	if err != nil {
		return err
	}
	_, err = dir.Readdirnames(1)
	_ = dir.Close()
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if mode&2 == 0 {
		return nil
	}
	scratch, err := os.CreateTemp(path, ".takeoutfix-check-*")
	if err != nil {
		return err
	}
	name := scratch.Name()
	_ = scratch.Close()
	return os.Remove(name)
}
