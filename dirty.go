package filearray

import (
	"os"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/filearray/internal/mmap"
)

// dirtyTracker records which pages of the mapping have been written through
// checked accessors, so FlushDirty can msync only those runs.
//
// All methods are nil-safe; a nil tracker is the "tracking disabled" state.
type dirtyTracker struct {
	mu       sync.Mutex
	pages    *roaring64.Bitmap
	pageSize int
	elemSize int
}

func newDirtyTracker(elemSize int) *dirtyTracker {
	return &dirtyTracker{
		pages:    roaring64.New(),
		pageSize: os.Getpagesize(),
		elemSize: elemSize,
	}
}

// mark records n elements starting at element index i as dirty.
func (d *dirtyTracker) mark(i, n int) {
	if d == nil {
		return
	}

	startByte := uint64(i) * uint64(d.elemSize)
	endByte := uint64(i+n) * uint64(d.elemSize)
	firstPage := startByte / uint64(d.pageSize)
	lastPage := (endByte - 1) / uint64(d.pageSize)

	d.mu.Lock()
	d.pages.AddRange(firstPage, lastPage+1)
	d.mu.Unlock()
}

// flush syncs the recorded page runs and clears the set. Runs of adjacent
// pages are coalesced into single msync calls.
func (d *dirtyTracker) flush(m *mmap.Map) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pages.IsEmpty() {
		return nil
	}

	size := m.Size()
	runStart, runEnd := int64(-1), int64(-1)

	syncRun := func() error {
		if runStart < 0 {
			return nil
		}
		off := runStart * int64(d.pageSize)
		end := (runEnd + 1) * int64(d.pageSize)
		if end > int64(size) {
			end = int64(size)
		}
		if off >= end {
			return nil
		}
		return m.SyncRange(int(off), int(end-off))
	}

	it := d.pages.Iterator()
	for it.HasNext() {
		page := int64(it.Next())
		if runStart >= 0 && page == runEnd+1 {
			runEnd = page
			continue
		}
		if err := syncRun(); err != nil {
			return err
		}
		runStart, runEnd = page, page
	}
	if err := syncRun(); err != nil {
		return err
	}

	d.pages = roaring64.New()
	return nil
}

// clear drops all recorded pages (after a full flush).
func (d *dirtyTracker) clear() {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.pages = roaring64.New()
	d.mu.Unlock()
}
