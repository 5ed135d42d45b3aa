// Package s3 provides an Amazon S3 backed blobstore.BlobStore.
//
// Reads are ranged GetObject calls so restores never download more than they
// need; streaming writes go through a pipe into the S3 upload manager, which
// handles multipart uploads transparently. The optional ManifestStore tracks
// the latest committed snapshot in DynamoDB with a conditional write, so two
// writers cannot both claim the same version.
package s3
