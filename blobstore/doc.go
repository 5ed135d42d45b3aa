// Package blobstore abstracts where array snapshots are kept.
//
// A BlobStore holds named, immutable blobs. The local implementation is
// backed by the file system (with memory-mapped reads), the memory
// implementation backs tests, and the s3 and minio subpackages talk to
// object storage.
//
// All operations take a context; reads are ranged so large snapshots can be
// restored without buffering them whole.
package blobstore
