package filearray

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrClosed is returned when operating on a closed array.
	ErrClosed = errors.New("filearray: array is closed")

	// ErrInvalidIterator is returned when constructing an iterator from a
	// nil or closed array outside the Begin/End factory path.
	ErrInvalidIterator = errors.New("filearray: iterator requires a live array")

	// ErrNegativeCount is returned when a creation request carries a
	// negative element count.
	ErrNegativeCount = errors.New("filearray: element count must not be negative")
)

// ErrOutOfRange indicates a checked element access beyond the array length.
type ErrOutOfRange struct {
	Index int
	Len   int
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("filearray: index %d out of range [0, %d)", e.Index, e.Len)
}

// ErrUnsupportedType indicates an element type whose bit pattern cannot be
// meaningfully persisted (it contains pointers, or has zero size).
type ErrUnsupportedType struct {
	Type   reflect.Type
	Reason string
}

func (e *ErrUnsupportedType) Error() string {
	return fmt.Sprintf("filearray: unsupported element type %s: %s", e.Type, e.Reason)
}
