// Package filearray presents a file on disk as a typed, fixed-length,
// random-access array backed by a shared memory mapping.
//
// An Array[T] maps the whole file at construction and interprets its bytes
// as a packed sequence of T. Writes through the array land directly in the
// mapped pages and reach the file via Flush (explicit) or Close (best
// effort). There is no header, no metadata and no versioning: the file
// format is the in-memory layout of T.
//
// # Quick Start
//
// Create a file holding 1024 zero-valued int32 elements:
//
//	arr, err := filearray.Create[int32]("data.bin", 1024)
//	if err != nil {
//		panic(err)
//	}
//	defer arr.Close()
//
//	arr.Set(0, 42) // unchecked, panics out of range
//	if err := arr.SetAt(1, 7); err != nil {
//		// checked access reports *ErrOutOfRange
//	}
//
//	if err := arr.Flush(); err != nil {
//		// explicit sync failures are reported as values
//	}
//
// Re-open an existing file; its byte length determines the element count
// (trailing bytes that do not form a whole T are ignored):
//
//	arr, err := filearray.Open[int32]("data.bin")
//
// # Generic Algorithms
//
// Data() returns a []T aliasing the mapping, so the standard slices and sort
// packages operate on the file in place:
//
//	slices.Sort(arr.Data())
//
// Cursor-style traversal is available through Begin/End/RBegin/REnd and the
// Distance/Advance/Next/Prev helpers, and range-over-func iteration through
// All, Backward and Values.
//
// # Element Types
//
// T must be a fixed-size type without pointers (integers, floats, arrays and
// structs thereof). This is validated by reflection at construction; types
// containing pointers, slices, maps, strings, channels, funcs or interfaces
// are rejected, as their bit patterns are meaningless on disk. Whether T's
// representation is stable across platforms is a caller concern.
//
// # Ownership
//
// Each Array owns exactly one file handle and one mapping. Close is
// idempotent; after Close, slices returned by Data() and Bytes() must not be
// touched. The package performs no synchronization of concurrent element
// access; racing writers are the caller's problem, exactly as with a plain
// slice.
//
// # Snapshots and Remote Storage
//
// The snapshot package provides compressed, checksummed point-in-time
// exports of an array's backing file, and the blobstore package stores those
// snapshots locally, in S3 or in MinIO.
package filearray
