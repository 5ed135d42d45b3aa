package filearray

import (
	"cmp"
	"iter"
)

// Iterator is a copyable cursor over an Array. It holds the owning array,
// an element index and a traversal direction, so one implementation covers
// both forward and reverse variants.
//
// An Iterator is valid only while its array is alive. Comparing or measuring
// the distance between iterators of different arrays (or of different
// directions) is undefined; only the indices are consulted.
//
// Dereferencing outside [0, Len()) panics with the native bounds error, the
// unchecked fast path mirroring raw pointer arithmetic.
type Iterator[T any] struct {
	arr     *Array[T]
	idx     int
	reverse bool
}

// NewIterator constructs a forward iterator positioned at index i. It fails
// with ErrInvalidIterator when arr is nil or closed; Begin/End and friends
// are the non-failing factory path.
func NewIterator[T any](arr *Array[T], i int) (Iterator[T], error) {
	if arr == nil || arr.closed.Load() {
		return Iterator[T]{}, ErrInvalidIterator
	}
	return Iterator[T]{arr: arr, idx: i}, nil
}

// Begin returns a forward iterator at the first element. For an empty array
// Begin() == End().
func (a *Array[T]) Begin() Iterator[T] {
	return Iterator[T]{arr: a, idx: 0}
}

// End returns the forward past-the-end iterator.
func (a *Array[T]) End() Iterator[T] {
	return Iterator[T]{arr: a, idx: len(a.data)}
}

// RBegin returns a reverse iterator at the last element. For an empty array
// RBegin() == REnd().
func (a *Array[T]) RBegin() Iterator[T] {
	return Iterator[T]{arr: a, idx: len(a.data) - 1, reverse: true}
}

// REnd returns the reverse past-the-end iterator (one before the first
// element).
func (a *Array[T]) REnd() Iterator[T] {
	return Iterator[T]{arr: a, idx: -1, reverse: true}
}

func (it Iterator[T]) step() int {
	if it.reverse {
		return -1
	}
	return 1
}

// Value returns the element under the cursor.
func (it Iterator[T]) Value() T {
	return it.arr.data[it.idx]
}

// Set stores v at the cursor position. The write is dirty-tracked when
// tracking is enabled.
func (it Iterator[T]) Set(v T) {
	it.arr.data[it.idx] = v
	it.arr.dirty.mark(it.idx, 1)
}

// Index returns the cursor's element index.
func (it Iterator[T]) Index() int {
	return it.idx
}

// Valid reports whether the cursor points at an element.
func (it Iterator[T]) Valid() bool {
	return it.arr != nil && it.idx >= 0 && it.idx < len(it.arr.data)
}

// Next returns the cursor advanced by one position in traversal order.
func (it Iterator[T]) Next() Iterator[T] {
	return it.Add(1)
}

// Prev returns the cursor moved back by one position in traversal order.
func (it Iterator[T]) Prev() Iterator[T] {
	return it.Add(-1)
}

// Add returns the cursor offset by n positions in traversal order
// (n may be negative).
func (it Iterator[T]) Add(n int) Iterator[T] {
	it.idx += n * it.step()
	return it
}

// Sub returns the cursor moved back by n positions in traversal order.
func (it Iterator[T]) Sub(n int) Iterator[T] {
	return it.Add(-n)
}

// Advance moves the cursor in place by n positions in traversal order.
func (it *Iterator[T]) Advance(n int) {
	it.idx += n * it.step()
}

// Distance returns the number of traversal steps from it to other
// (other - it in pointer arithmetic terms).
func (it Iterator[T]) Distance(other Iterator[T]) int {
	return (other.idx - it.idx) * it.step()
}

// Equal reports whether both cursors denote the same position of the same
// variant.
func (it Iterator[T]) Equal(other Iterator[T]) bool {
	return it.idx == other.idx && it.reverse == other.reverse
}

// Compare orders two cursors in traversal order: -1 when it precedes other,
// 0 when equal, +1 when it follows other.
func (it Iterator[T]) Compare(other Iterator[T]) int {
	return cmp.Compare(it.idx, other.idx) * it.step()
}

// Distance returns the number of traversal steps from first to last,
// mirroring the standard distance(first, last) free function.
func Distance[T any](first, last Iterator[T]) int {
	return first.Distance(last)
}

// Advance moves it by n traversal steps in place.
func Advance[T any](it *Iterator[T], n int) {
	it.Advance(n)
}

// Next returns it advanced by n traversal steps.
func Next[T any](it Iterator[T], n int) Iterator[T] {
	return it.Add(n)
}

// Prev returns it moved back by n traversal steps.
func Prev[T any](it Iterator[T], n int) Iterator[T] {
	return it.Sub(n)
}

// All returns an index/value sequence over the array in forward order.
func (a *Array[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range a.data {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Backward returns an index/value sequence over the array in reverse order.
func (a *Array[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := len(a.data) - 1; i >= 0; i-- {
			if !yield(i, a.data[i]) {
				return
			}
		}
	}
}

// Values returns a value sequence over the array in forward order.
func (a *Array[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range a.data {
			if !yield(v) {
				return
			}
		}
	}
}
