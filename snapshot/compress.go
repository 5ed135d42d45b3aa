package snapshot

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the block codec of a snapshot.
type Compression uint8

const (
	// CompressionNone stores blocks raw.
	CompressionNone Compression = iota
	// CompressionLZ4 trades ratio for speed.
	CompressionLZ4
	// CompressionZstd is the default codec.
	CompressionZstd
)

func (c Compression) valid() bool {
	return c <= CompressionZstd
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// Blocks that shrink by less than this much are stored raw; decompression
// overhead is not worth single-digit savings.
const incompressibleRatio = 0.9

var zstdEncoderPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		if err != nil {
			panic(err)
		}
		return enc
	},
}

var zstdDecoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(err)
		}
		return dec
	},
}

// compressBlock compresses src with the given codec. It returns the
// compressed bytes and true, or nil and false when the block should be
// stored raw.
func compressBlock(c Compression, src []byte) ([]byte, bool, error) {
	switch c {
	case CompressionNone:
		return nil, false, nil

	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(src)))
		n, err := lz4.CompressBlock(src, dst, nil)
		if err != nil {
			return nil, false, fmt.Errorf("lz4 compress: %w", err)
		}
		// n == 0 means incompressible.
		if n == 0 || float64(n) > float64(len(src))*incompressibleRatio {
			return nil, false, nil
		}
		return dst[:n], true, nil

	case CompressionZstd:
		enc := zstdEncoderPool.Get().(*zstd.Encoder)
		defer zstdEncoderPool.Put(enc)

		dst := enc.EncodeAll(src, nil)
		if float64(len(dst)) > float64(len(src))*incompressibleRatio {
			return nil, false, nil
		}
		return dst, true, nil

	default:
		return nil, false, fmt.Errorf("%w: unknown compression %d", ErrInvalidFormat, c)
	}
}

// decompressBlock expands a compressed block into dst, which must be sized
// to the block's raw length.
func decompressBlock(c Compression, src, dst []byte) error {
	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(src, dst)
		if err != nil {
			return fmt.Errorf("lz4 decompress: %w", err)
		}
		if n != len(dst) {
			return fmt.Errorf("%w: lz4 block expands to %d bytes, want %d", ErrInvalidFormat, n, len(dst))
		}
		return nil

	case CompressionZstd:
		dec := zstdDecoderPool.Get().(*zstd.Decoder)
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(src, dst[:0])
		if err != nil {
			return fmt.Errorf("zstd decompress: %w", err)
		}
		if len(out) != len(dst) {
			return fmt.Errorf("%w: zstd block expands to %d bytes, want %d", ErrInvalidFormat, len(out), len(dst))
		}
		return nil

	default:
		return fmt.Errorf("%w: compressed block under compression %q", ErrInvalidFormat, c)
	}
}
