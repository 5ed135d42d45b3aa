package minio

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/filearray/blobstore"
)

func newTestStore(t *testing.T) (*fakeObjectServer, *Store) {
	t.Helper()

	fake, server := newFakeServer()
	t.Cleanup(server.Close)

	client, err := minio.New(strings.TrimPrefix(server.URL, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4("test", "test", ""),
		Secure: false,
		Region: "us-east-1",
	})
	require.NoError(t, err)

	return fake, New(client, "bucket", func(o *Options) { o.Prefix = "snap/" })
}

func TestStore_OpenNotFound(t *testing.T) {
	_, store := newTestStore(t)

	_, err := store.Open(context.Background(), "missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestStore_PutOpenRangedRead(t *testing.T) {
	ctx := context.Background()
	_, store := newTestStore(t)

	require.NoError(t, store.Put(ctx, "data", []byte("hello world")))

	blob, err := store.Open(ctx, "data")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(11), blob.Size())

	p := make([]byte, 5)
	n, err := blob.ReadAt(ctx, p, 6)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "world", string(p))

	rc, err := blob.ReadRange(ctx, 0, 5)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(got))
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	fake, store := newTestStore(t)

	fake.put("bucket", "snap/v1/a", []byte("a"))
	fake.put("bucket", "snap/v1/b", []byte("b"))
	fake.put("bucket", "other/c", []byte("c"))

	names, err := store.List(ctx, "v1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1/a", "v1/b"}, names)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	_, store := newTestStore(t)

	require.NoError(t, store.Put(ctx, "data", []byte("x")))
	require.NoError(t, store.Delete(ctx, "data"))
	require.NoError(t, store.Delete(ctx, "data"))

	_, err := store.Open(ctx, "data")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
