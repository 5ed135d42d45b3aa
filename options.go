package filearray

import (
	"os"

	"github.com/hupe1980/filearray/internal/fs"
	"github.com/hupe1980/filearray/internal/mmap"
)

// AccessPattern hints to the kernel how the mapped data will be accessed.
type AccessPattern int

const (
	// AccessDefault is the default access pattern (no specific advice).
	AccessDefault AccessPattern = iota
	// AccessSequential expects data to be accessed sequentially.
	AccessSequential
	// AccessRandom expects data to be accessed randomly.
	AccessRandom
	// AccessWillNeed expects data to be accessed in the near future.
	AccessWillNeed
)

func (p AccessPattern) internal() mmap.AccessPattern {
	switch p {
	case AccessSequential:
		return mmap.AccessSequential
	case AccessRandom:
		return mmap.AccessRandom
	case AccessWillNeed:
		return mmap.AccessWillNeed
	default:
		return mmap.AccessDefault
	}
}

type options struct {
	logger        *Logger
	pattern       AccessPattern
	dirtyTracking bool
	fileMode      os.FileMode
	fsys          fs.FileSystem
}

// Option configures array construction.
type Option func(*options)

// WithLogger configures structured logging for lifecycle operations.
// Pass nil to keep logging disabled.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAccessPattern advises the kernel about the expected access pattern.
// This is a hint; platforms without madvise ignore it.
func WithAccessPattern(pattern AccessPattern) Option {
	return func(o *options) {
		o.pattern = pattern
	}
}

// WithDirtyTracking enables page-granular tracking of checked writes
// (SetAt, iterator Set, MarkDirty) so FlushDirty can sync only the touched
// page ranges instead of the whole mapping.
//
// Writes that go through Get/Set or directly through Data() bypass the
// tracker; mark them explicitly with MarkDirty if FlushDirty is in use.
func WithDirtyTracking() Option {
	return func(o *options) {
		o.dirtyTracking = true
	}
}

// WithFileMode sets the permission bits used when the backing file is
// created. Defaults to 0o644.
func WithFileMode(mode os.FileMode) Option {
	return func(o *options) {
		o.fileMode = mode
	}
}

// withFileSystem swaps the file system used by the creation path. Test hook.
func withFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fsys = fsys
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:   NoopLogger(),
		fileMode: 0o644,
		fsys:     fs.Default,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
