// Package mmap provides read-write memory-mapped file access.
//
// # Overview
//
// A Map ties together an open file handle and a shared, writable mapping of
// its contents. Writes through Bytes() land directly in the page cache and
// are persisted by Sync (or best-effort at Close).
//
// # Usage
//
//	m, err := mmap.OpenFile("data.bin")
//	if err != nil { ... }
//	defer m.Close()
//
//	// Zero-copy read-write access to file contents
//	data := m.Bytes()
//
//	// Persist modified pages
//	if err := m.Sync(); err != nil { ... }
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_SHARED; pages are populated
//     eagerly on Linux (MAP_POPULATE) and via an MADV_WILLNEED hint elsewhere
//   - Windows: CreateFileMapping/MapViewOfFile with FlushViewOfFile for Sync
//
// # Thread Safety
//
// Close is idempotent and protected by an atomic flag. Concurrent writes to
// overlapping byte ranges are the caller's responsibility, and no goroutine
// may touch Bytes() after Close returns.
package mmap
