package s3

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStore_Integration runs against a real bucket and is skipped unless
// FILEARRAY_S3_BUCKET is set.
func TestStore_Integration(t *testing.T) {
	bucket := os.Getenv("FILEARRAY_S3_BUCKET")
	if bucket == "" {
		t.Skip("FILEARRAY_S3_BUCKET not set")
	}

	ctx := context.Background()

	cfg, err := config.LoadDefaultConfig(ctx)
	require.NoError(t, err)

	store := New(s3.NewFromConfig(cfg), bucket, func(o *Options) {
		o.Prefix = "filearray-test/"
	})

	name := "integration/blob"
	t.Cleanup(func() { _ = store.Delete(ctx, name) })

	require.NoError(t, store.Put(ctx, name, []byte("integration payload")))

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
