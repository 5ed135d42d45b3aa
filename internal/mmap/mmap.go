package mmap

import (
	"os"
	"sync/atomic"

	"github.com/hupe1980/filearray/internal/conv"
)

// Map represents a writable memory-mapped file.
// It owns both the mapping and the underlying file handle and is responsible
// for releasing them, in that order.
type Map struct {
	data   []byte
	f      *os.File
	size   int
	closed atomic.Bool
}

// OpenFile opens path read-write and maps its full contents as a shared,
// writable mapping. An empty file yields a valid Map with a nil byte slice.
// On any failure after the file has been opened, the handle is closed before
// the error is returned.
func OpenFile(path string) (*Map, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	size, err := conv.Int64ToInt(fi.Size())
	if err != nil {
		f.Close()
		return nil, ErrInvalidSize
	}
	if size == 0 {
		return &Map{data: nil, size: 0, f: f}, nil
	}

	data, err := osMap(f, size)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Map{data: data, size: size, f: f}, nil
}

// Bytes returns the underlying byte slice.
// Warning: The slice is valid only until Close() is called.
// Accessing the slice after Close() results in undefined behavior (likely a crash).
func (m *Map) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Map) Size() int {
	return m.size
}

// Sync flushes modified pages to the backing file synchronously.
func (m *Map) Sync() error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil {
		return nil
	}
	return osSync(m.data, m.f)
}

// SyncRange flushes a byte range to the backing file. The range is widened
// to page boundaries by the kernel.
func (m *Map) SyncRange(off, length int) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil && off == 0 && length == 0 {
		return nil
	}
	if off < 0 || length < 0 || off+length > m.size {
		return ErrInvalidRange
	}
	if length == 0 {
		return nil
	}
	return osSyncRange(m.data, off, length, m.f)
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (m *Map) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil {
		return nil
	}
	return osAdvise(m.data, pattern)
}

// Close syncs modified pages (best effort), unmaps the memory and closes the
// file handle, in that order. It is idempotent.
func (m *Map) Close() error {
	if m.closed.Swap(true) {
		return nil // Already closed
	}

	var err error
	if m.data != nil {
		// Final sync is best effort: the unmap and close must happen
		// regardless of its outcome.
		_ = osSync(m.data, m.f)
		err = osUnmap(m.data)
		m.data = nil
	}
	if m.f != nil {
		if closeErr := m.f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		m.f = nil
	}
	return err
}
