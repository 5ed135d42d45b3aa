package snapshot

import (
	"bytes"
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/filearray"
)

// memSource is an in-memory Source for tests.
type memSource struct {
	data     []byte
	elemSize int
}

func (s *memSource) Bytes() []byte    { return s.data }
func (s *memSource) ElementSize() int { return s.elemSize }
func (s *memSource) Len() int         { return len(s.data) / s.elemSize }

func compressibleSource(n int) *memSource {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 7)
	}
	return &memSource{data: data, elemSize: 4}
}

func randomSource(n int) *memSource {
	data := make([]byte, n)
	rng := rand.New(rand.NewSource(42))
	rng.Read(data)
	return &memSource{data: data, elemSize: 4}
}

func roundTrip(t *testing.T, src *memSource, opts ...Option) Header {
	t.Helper()
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, Save(ctx, &buf, src, opts...))

	path := filepath.Join(t.TempDir(), "restored.bin")
	header, err := Restore(ctx, &buf, path, opts...)
	require.NoError(t, err)

	restored, err := os.ReadFile(path)
	require.NoError(t, err)
	want := src.data[:src.Len()*src.elemSize]
	require.Equal(t, want, restored)

	return header
}

func TestRoundTrip_Codecs(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			header := roundTrip(t, compressibleSource(1<<16), WithCompression(c))
			assert.Equal(t, c, header.Compression)
			assert.Equal(t, int64(1<<14), header.Count)
		})
	}
}

func TestRoundTrip_IncompressibleData(t *testing.T) {
	// Random bytes fall back to raw blocks under every codec.
	for _, c := range []Compression{CompressionLZ4, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			roundTrip(t, randomSource(1<<15), WithCompression(c))
		})
	}
}

func TestRoundTrip_SmallBlocks(t *testing.T) {
	roundTrip(t, compressibleSource(10_000), WithBlockSize(512))
}

func TestRoundTrip_TrailingBytesExcluded(t *testing.T) {
	src := &memSource{data: []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, elemSize: 4}

	var buf bytes.Buffer
	require.NoError(t, Save(context.Background(), &buf, src, WithCompression(CompressionNone)))

	path := filepath.Join(t.TempDir(), "restored.bin")
	header, err := Restore(context.Background(), &buf, path)
	require.NoError(t, err)
	assert.Equal(t, int64(2), header.Count)

	restored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, restored)
}

func TestRoundTrip_Empty(t *testing.T) {
	header := roundTrip(t, &memSource{elemSize: 8})
	assert.Equal(t, int64(0), header.Count)
}

func TestRoundTrip_Throttled(t *testing.T) {
	roundTrip(t, compressibleSource(1<<14), WithIOLimit(1<<20))
}

func TestRestore_CorruptPayload(t *testing.T) {
	src := compressibleSource(1 << 12)

	var buf bytes.Buffer
	require.NoError(t, Save(context.Background(), &buf, src, WithCompression(CompressionNone)))

	// Flip a byte in the middle of the first block's data.
	data := buf.Bytes()
	data[headerSize+8+100] ^= 0xFF

	_, err := Restore(context.Background(), bytes.NewReader(data), filepath.Join(t.TempDir(), "x.bin"))
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestRestore_BadMagic(t *testing.T) {
	data := make([]byte, headerSize)
	copy(data, "NOTASNAP")

	_, err := Restore(context.Background(), bytes.NewReader(data), filepath.Join(t.TempDir(), "x.bin"))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestRestore_Truncated(t *testing.T) {
	src := compressibleSource(1 << 12)

	var buf bytes.Buffer
	require.NoError(t, Save(context.Background(), &buf, src))

	data := buf.Bytes()[:buf.Len()/2]

	_, err := Restore(context.Background(), bytes.NewReader(data), filepath.Join(t.TempDir(), "x.bin"))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestSave_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := Save(ctx, &buf, compressibleSource(1<<16), WithBlockSize(1024))
	assert.ErrorIs(t, err, context.Canceled)
}

// TestArrayRoundTrip snapshots a live array and reopens the restored file.
func TestArrayRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	arr, err := filearray.Create[int64](filepath.Join(dir, "src.bin"), 1024)
	require.NoError(t, err)
	defer arr.Close()

	for i := range 1024 {
		arr.Set(i, int64(i)*7)
	}

	snapPath := filepath.Join(dir, "src.snap")
	require.NoError(t, SaveFile(ctx, snapPath, arr))

	restoredPath := filepath.Join(dir, "restored.bin")
	header, err := RestoreFile(ctx, snapPath, restoredPath)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), header.Count)
	assert.Equal(t, 8, header.ElementSize)

	restored, err := filearray.Open[int64](restoredPath)
	require.NoError(t, err)
	defer restored.Close()

	require.Equal(t, 1024, restored.Len())
	for i := range 1024 {
		require.Equal(t, int64(i)*7, restored.Get(i))
	}
}
