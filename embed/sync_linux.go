package embed

import (
	"os"

	"golang.org/x/sys/unix"
)

// syncFile flushes file data to stable storage. Metadata other than the file size is left
// to the filesystem.
func syncFile(f *os.File) error {
	for {
		err := unix.Fdatasync(int(f.Fd()))
		if err != unix.EINTR {
			return err
		}
	}
}
