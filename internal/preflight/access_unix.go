//go:build unix

package preflight

import "golang.org/x/sys/unix"

const (
	accessRead      = unix.R_OK | unix.X_OK
	accessReadWrite = unix.R_OK | unix.W_OK | unix.X_OK
)

func access(path string, mode uint32) error {
	return unix.Access(path, mode)
}
