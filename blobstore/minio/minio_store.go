// Package minio provides a MinIO backed blobstore.BlobStore for
// S3-compatible object storage outside AWS.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/filearray/blobstore"
)

// Compile time check to ensure Store satisfies the BlobStore interface.
var _ blobstore.BlobStore = (*Store)(nil)

// Options configures a Store.
type Options struct {
	// Prefix is prepended to every blob name.
	Prefix string
}

// Store implements blobstore.BlobStore on a MinIO bucket.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// New creates a new Store for the given bucket.
func New(client *minio.Client, bucket string, optFns ...func(o *Options)) *Store {
	opts := Options{}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Store{client: client, bucket: bucket, prefix: opts.Prefix}
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

// Open opens a blob for reading.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	info, err := s.client.StatObject(ctx, s.bucket, s.key(name), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, blobstore.ErrNotFound
		}
		return nil, fmt.Errorf("stat %s/%s: %w", s.bucket, s.key(name), err)
	}

	return &blob{store: s, key: s.key(name), size: info.Size}, nil
}

// Create starts a streaming upload completed on Close.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	pr, pw := io.Pipe()

	w := &writableBlob{pw: pw, done: make(chan struct{})}

	go func() {
		defer close(w.done)
		_, err := s.client.PutObject(ctx, s.bucket, s.key(name), pr, -1, minio.PutObjectOptions{})
		if err != nil {
			pr.CloseWithError(err)
		}
		w.err = err
	}()

	return w, nil
}

// Put uploads a blob in a single request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", s.bucket, s.key(name), err)
	}

	return nil
}

// Delete removes a blob. A missing blob is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("delete %s/%s: %w", s.bucket, s.key(name), err)
	}

	return nil
}

// List returns blob names under the given prefix, sorted lexicographically
// by the server.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.key(prefix),
		Recursive: true,
	}) {
		if info.Err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", s.bucket, s.key(prefix), info.Err)
		}
		names = append(names, info.Key[len(s.prefix):])
	}

	return names, nil
}

// blob reads an object through ranged GetObject requests.
type blob struct {
	store *Store
	key   string
	size  int64
}

func (b *blob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 || off >= b.size {
		return 0, io.EOF
	}

	want := int64(len(p))
	if off+want > b.size {
		want = b.size - off
	}

	rc, err := b.ReadRange(ctx, off, want)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	n, err := io.ReadFull(rc, p[:want])
	if err != nil {
		return n, err
	}
	if int64(n) < int64(len(p)) {
		return n, io.EOF
	}

	return n, nil
}

func (b *blob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if length <= 0 || off >= b.size {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}

	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, off+length-1); err != nil {
		return nil, fmt.Errorf("range %s/%s: %w", b.store.bucket, b.key, err)
	}

	obj, err := b.store.client.GetObject(ctx, b.store.bucket, b.key, opts)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", b.store.bucket, b.key, err)
	}

	return obj, nil
}

func (b *blob) Size() int64 {
	return b.size
}

func (b *blob) Close() error {
	return nil
}

// writableBlob feeds a background upload through a pipe.
type writableBlob struct {
	pw   *io.PipeWriter
	done chan struct{}
	err  error

	closeOnce sync.Once
	closeErr  error
}

func (w *writableBlob) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

// Sync is a no-op; durability comes from completing the upload in Close.
func (w *writableBlob) Sync() error {
	return nil
}

func (w *writableBlob) Close() error {
	w.closeOnce.Do(func() {
		if err := w.pw.Close(); err != nil {
			w.closeErr = err
		}
		<-w.done
		if w.closeErr == nil {
			w.closeErr = w.err
		}
	})

	return w.closeErr
}
