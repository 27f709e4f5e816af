//go:build unix

package index

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes an exclusive flock on fh.  Readers never lock, so
// this only keeps oversized appends from interleaving with each other.
func lockFile(fh *os.File) (unlock func(), err error) {
	fd := int(fh.Fd())
	err = unix.Flock(fd, unix.LOCK_EX)
	if err != nil {
		return nil, err
	}
	return func() { unix.Flock(fd, unix.LOCK_UN) }, nil
}
