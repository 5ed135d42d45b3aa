// Package fs abstracts the file system operations behind array creation so
// error paths (failed writes, failed syncs) can be exercised in tests.
package fs
