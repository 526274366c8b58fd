//go:build !linux
// +build !linux

package embed

import "os"

func syncFile(f *os.File) error {
	return f.Sync()
}
