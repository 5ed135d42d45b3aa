package snapshot

import "golang.org/x/time/rate"

const defaultBlockSize = 1 << 20 // 1 MiB

type options struct {
	compression Compression
	blockSize   int
	limiter     *rate.Limiter
}

// Option configures snapshot saves and restores.
type Option func(*options)

// WithCompression selects the block codec. The default is zstd.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithBlockSize sets the uncompressed block size in bytes. The default is
// 1 MiB.
func WithBlockSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.blockSize = size
		}
	}
}

// WithIOLimit throttles raw payload throughput to bytesPerSecond. Zero
// means unlimited.
func WithIOLimit(bytesPerSecond int) Option {
	return func(o *options) {
		if bytesPerSecond > 0 {
			o.limiter = rate.NewLimiter(rate.Limit(bytesPerSecond), bytesPerSecond)
		}
	}
}

func applyOptions(opts ...Option) options {
	o := options{
		compression: CompressionZstd,
		blockSize:   defaultBlockSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
