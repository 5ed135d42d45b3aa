package filearray

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/hupe1980/filearray/internal/fs"
	"github.com/hupe1980/filearray/internal/mmap"
)

// Array is a typed view over a memory-mapped file. It owns exactly one file
// handle and one mapping; both live until Close. An Array must not be copied.
type Array[T any] struct {
	path     string
	m        *mmap.Map
	data     []T
	elemSize int
	logger   *Logger
	dirty    *dirtyTracker
	closed   atomic.Bool
}

// OpenOrCreate opens the file at path as an array of T.
//
// If count > 0, the file is created (or truncated), filled with count
// zero-valued elements and synced before being mapped. If count == 0, the
// file is opened as-is and its byte length determines the element count; a
// missing file is an error. Use Create to express "create an empty file".
func OpenOrCreate[T any](path string, count int, optFns ...Option) (*Array[T], error) {
	if count < 0 {
		return nil, ErrNegativeCount
	}
	if err := validateElement[T](); err != nil {
		return nil, err
	}

	o := applyOptions(optFns)

	if count > 0 {
		byteLen := int64(count) * int64(elementSize[T]())
		if err := createZeroFilled(o.fsys, path, byteLen, o.fileMode); err != nil {
			o.logger.LogOpen(path, 0, err)
			return nil, err
		}
	}

	return open[T](path, o)
}

// Open opens an existing file as an array of T. The element count is the
// file's byte length divided by sizeof(T), truncating.
func Open[T any](path string, optFns ...Option) (*Array[T], error) {
	return OpenOrCreate[T](path, 0, optFns...)
}

// Create creates (or truncates) the file at path with count zero-valued
// elements and opens it. Unlike OpenOrCreate, count == 0 creates an empty
// file rather than opening an existing one.
func Create[T any](path string, count int, optFns ...Option) (*Array[T], error) {
	if count < 0 {
		return nil, ErrNegativeCount
	}
	if err := validateElement[T](); err != nil {
		return nil, err
	}

	o := applyOptions(optFns)

	byteLen := int64(count) * int64(elementSize[T]())
	if err := createZeroFilled(o.fsys, path, byteLen, o.fileMode); err != nil {
		o.logger.LogOpen(path, 0, err)
		return nil, err
	}

	return open[T](path, o)
}

func open[T any](path string, o options) (*Array[T], error) {
	m, err := mmap.OpenFile(path)
	if err != nil {
		o.logger.LogOpen(path, 0, err)
		return nil, fmt.Errorf("filearray: map %q: %w", path, err)
	}

	a := &Array[T]{
		path:     path,
		m:        m,
		data:     view[T](m.Bytes()),
		elemSize: elementSize[T](),
		logger:   o.logger,
	}

	if o.pattern != AccessDefault {
		// Advisory only; a refusal is not worth failing construction over.
		_ = m.Advise(o.pattern.internal())
	}
	if o.dirtyTracking {
		a.dirty = newDirtyTracker(a.elemSize)
	}

	o.logger.LogOpen(path, len(a.data), nil)
	return a, nil
}

// createZeroFilled creates or truncates path and writes byteLen zero bytes,
// synced to storage before returning. The handle is never leaked.
func createZeroFilled(fsys fs.FileSystem, path string, byteLen int64, mode os.FileMode) error {
	f, err := fsys.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return fmt.Errorf("filearray: create %q: %w", path, err)
	}

	const chunkSize = 64 * 1024
	buf := make([]byte, min(byteLen, chunkSize))
	for remaining := byteLen; remaining > 0; {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		if _, err := f.Write(buf[:n]); err != nil {
			f.Close()
			return fmt.Errorf("filearray: fill %q: %w", path, err)
		}
		remaining -= n
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("filearray: sync %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("filearray: close %q: %w", path, err)
	}
	return nil
}

// Len returns the element count.
func (a *Array[T]) Len() int {
	return len(a.data)
}

// Empty reports whether the array has no elements.
func (a *Array[T]) Empty() bool {
	return len(a.data) == 0
}

// ElementSize returns sizeof(T) in bytes.
func (a *Array[T]) ElementSize() int {
	return a.elemSize
}

// Path returns the backing file's path.
func (a *Array[T]) Path() string {
	return a.path
}

// Get returns the element at index i without bounds checking beyond the
// native slice panic. This is the unchecked fast path.
func (a *Array[T]) Get(i int) T {
	return a.data[i]
}

// Set stores v at index i without bounds checking beyond the native slice
// panic. Writes through Set are not dirty-tracked; see WithDirtyTracking.
func (a *Array[T]) Set(i int, v T) {
	a.data[i] = v
}

// At returns the element at index i, reporting *ErrOutOfRange when
// i >= Len().
func (a *Array[T]) At(i int) (T, error) {
	if i < 0 || i >= len(a.data) {
		var zero T
		return zero, &ErrOutOfRange{Index: i, Len: len(a.data)}
	}
	return a.data[i], nil
}

// SetAt stores v at index i, reporting *ErrOutOfRange when i >= Len().
func (a *Array[T]) SetAt(i int, v T) error {
	if i < 0 || i >= len(a.data) {
		return &ErrOutOfRange{Index: i, Len: len(a.data)}
	}
	a.data[i] = v
	a.dirty.mark(i, 1)
	return nil
}

// Data returns the typed slice aliasing the mapped region. Mutations are
// visible through the array and persisted by Flush/Close. The slice is valid
// only until Close.
func (a *Array[T]) Data() []T {
	if a.closed.Load() {
		return nil
	}
	return a.data
}

// Bytes returns the raw mapped bytes. Same validity rules as Data.
func (a *Array[T]) Bytes() []byte {
	return a.m.Bytes()
}

// Flush synchronizes all modified pages to the backing file. Unlike the
// best-effort sync at Close, failures here are reported to the caller.
func (a *Array[T]) Flush() error {
	if a.closed.Load() {
		return ErrClosed
	}
	err := a.m.Sync()
	if err == nil {
		a.dirty.clear()
	}
	a.logger.LogFlush(a.path, err)
	return err
}

// FlushDirty synchronizes only the page ranges recorded by the dirty
// tracker, then clears them. Without WithDirtyTracking it degrades to a full
// Flush.
func (a *Array[T]) FlushDirty() error {
	if a.closed.Load() {
		return ErrClosed
	}
	if a.dirty == nil {
		return a.Flush()
	}
	err := a.dirty.flush(a.m)
	a.logger.LogFlush(a.path, err)
	return err
}

// MarkDirty records n elements starting at index i as modified, for callers
// writing through Data(). No-op without WithDirtyTracking.
func (a *Array[T]) MarkDirty(i, n int) {
	if i < 0 || n <= 0 || i >= len(a.data) {
		return
	}
	if i+n > len(a.data) {
		n = len(a.data) - i
	}
	a.dirty.mark(i, n)
}

// Close syncs modified pages (best effort), releases the mapping and closes
// the file handle, in that order. It is idempotent and never panics.
func (a *Array[T]) Close() error {
	if a.closed.Swap(true) {
		return nil
	}
	a.data = nil
	err := a.m.Close()
	a.logger.LogClose(a.path, err)
	return err
}
