//go:build linux

package mmap

import "golang.org/x/sys/unix"

// MAP_POPULATE pre-faults the mapping so first access doesn't page-fault.
const populateFlag = unix.MAP_POPULATE

func populateHint(_ []byte) {}
