// Package snapshot exports and restores point-in-time copies of an array's
// backing bytes.
//
// A snapshot is a self-describing header, a stream of independently
// compressed blocks and a trailing CRC32 over the raw payload. Blocks that
// do not compress well are stored raw, so incompressible data costs almost
// nothing. Saves and restores can be throttled to a byte rate, and the
// Manager moves snapshots through a blobstore.BlobStore.
package snapshot
