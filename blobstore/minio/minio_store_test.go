package minio

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/filearray/blobstore"
)

// TestStore_Integration runs against a live MinIO server and is skipped
// unless FILEARRAY_MINIO_ENDPOINT is set. FILEARRAY_MINIO_BUCKET,
// MINIO_ACCESS_KEY and MINIO_SECRET_KEY must be set alongside it.
func TestStore_Integration(t *testing.T) {
	endpoint := os.Getenv("FILEARRAY_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("FILEARRAY_MINIO_ENDPOINT not set")
	}
	bucket := os.Getenv("FILEARRAY_MINIO_BUCKET")

	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
	})
	require.NoError(t, err)

	ctx := context.Background()
	store := New(client, bucket, func(o *Options) { o.Prefix = "filearray-test/" })

	name := "integration/blob"
	t.Cleanup(func() { _ = store.Delete(ctx, name) })

	_, err = store.Open(ctx, name)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, store.Put(ctx, name, []byte("integration payload")))

	w, err := store.Create(ctx, name+".streamed")
	require.NoError(t, err)
	_, err = w.Write([]byte("streamed payload"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	t.Cleanup(func() { _ = store.Delete(ctx, name+".streamed") })

	blob, err := store.Open(ctx, name)
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(19), blob.Size())

	rc, err := blob.ReadRange(ctx, 12, 7)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "payload", string(got))

	names, err := store.List(ctx, "integration/")
	require.NoError(t, err)
	assert.Contains(t, names, name)
}
