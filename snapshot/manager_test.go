package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/filearray/blobstore"
)

func TestManager_SaveRestore(t *testing.T) {
	ctx := context.Background()
	m := NewManager(blobstore.NewMemoryStore(), WithCompression(CompressionLZ4))

	src := compressibleSource(1 << 14)
	require.NoError(t, m.Save(ctx, "arrays/a", src))

	path := filepath.Join(t.TempDir(), "a.bin")
	header, err := m.Restore(ctx, "arrays/a", path)
	require.NoError(t, err)
	assert.Equal(t, CompressionLZ4, header.Compression)

	restored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, src.data, restored)
}

func TestManager_RestoreMissing(t *testing.T) {
	m := NewManager(blobstore.NewMemoryStore())

	_, err := m.Restore(context.Background(), "nope", filepath.Join(t.TempDir(), "x.bin"))
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestManager_SaveAll(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	m := NewManager(store)

	sources := map[string]Source{
		"arrays/a": compressibleSource(1 << 12),
		"arrays/b": compressibleSource(1 << 13),
		"arrays/c": randomSource(1 << 12),
	}
	require.NoError(t, m.SaveAll(ctx, sources, 2))

	names, err := store.List(ctx, "arrays/")
	require.NoError(t, err)
	assert.Equal(t, []string{"arrays/a", "arrays/b", "arrays/c"}, names)

	dir := t.TempDir()
	for name := range sources {
		_, err := m.Restore(ctx, name, filepath.Join(dir, filepath.Base(name)))
		require.NoError(t, err)
	}
}

func TestManager_SaveAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewManager(blobstore.NewMemoryStore())
	err := m.SaveAll(ctx, map[string]Source{"a": compressibleSource(1 << 12)}, 1)
	assert.Error(t, err)
}
