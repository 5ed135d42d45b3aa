//go:build windows

package mmap

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

func osMap(f *os.File, size int) ([]byte, error) {
	// Create file mapping object with read-write access.
	h, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READWRITE, 0, 0, nil)
	if err != nil {
		return nil, err
	}
	// The view holds a reference, so the mapping handle can be closed here.
	defer windows.CloseHandle(h)

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if err != nil {
		return nil, err
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

func osUnmap(data []byte) error {
	return windows.UnmapViewOfFile(uintptr(unsafe.Pointer(&data[0])))
}

func osSync(data []byte, f *os.File) error {
	if err := windows.FlushViewOfFile(uintptr(unsafe.Pointer(&data[0])), uintptr(len(data))); err != nil {
		return err
	}
	// FlushViewOfFile only writes dirty pages to the file; FlushFileBuffers
	// makes them durable.
	return windows.FlushFileBuffers(windows.Handle(f.Fd()))
}

func osSyncRange(data []byte, off, length int, f *os.File) error {
	if err := windows.FlushViewOfFile(uintptr(unsafe.Pointer(&data[off])), uintptr(length)); err != nil {
		return err
	}
	return windows.FlushFileBuffers(windows.Handle(f.Fd()))
}

func osAdvise(data []byte, pattern AccessPattern) error {
	// Windows has no madvise equivalent; the page cache still handles
	// sequential access well. No-op.
	_ = data
	_ = pattern
	return nil
}
