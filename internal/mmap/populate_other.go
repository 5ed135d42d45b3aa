//go:build unix && !linux

package mmap

import "golang.org/x/sys/unix"

const populateFlag = 0

// populateHint approximates MAP_POPULATE on platforms without it.
func populateHint(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, unix.MADV_WILLNEED)
}
