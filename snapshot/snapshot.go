package snapshot

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"golang.org/x/time/rate"

	"github.com/hupe1980/filearray/internal/conv"
)

// Source is anything that exposes a contiguous byte view of fixed-size
// elements. *filearray.Array[T] satisfies it.
type Source interface {
	// Bytes returns the backing bytes.
	Bytes() []byte
	// ElementSize returns the size of one element in bytes.
	ElementSize() int
	// Len returns the number of elements.
	Len() int
}

// Save writes a snapshot of src to w.
//
// Only complete elements are captured; trailing bytes beyond
// Len()*ElementSize() are excluded. The caller is responsible for not
// mutating src concurrently.
func Save(ctx context.Context, w io.Writer, src Source, opts ...Option) error {
	o := applyOptions(opts...)

	// The header stores both as uint32.
	elemSize, err := conv.IntToUint32(src.ElementSize())
	if err != nil {
		return fmt.Errorf("snapshot: element size: %w", err)
	}
	blockSize, err := conv.IntToUint32(o.blockSize)
	if err != nil {
		return fmt.Errorf("snapshot: block size: %w", err)
	}

	header := Header{
		Compression: o.compression,
		BlockSize:   int(blockSize),
		ElementSize: int(elemSize),
		Count:       int64(src.Len()),
	}

	buf := header.encode()
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}

	payload := src.Bytes()
	if limit := header.PayloadSize(); int64(len(payload)) > limit {
		payload = payload[:limit]
	}

	crc := newPayloadChecksum()

	for len(payload) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		block := payload
		if len(block) > o.blockSize {
			block = block[:o.blockSize]
		}
		payload = payload[len(block):]

		if err := throttle(ctx, o.limiter, len(block)); err != nil {
			return err
		}

		crc.add(block)

		compressed, ok, err := compressBlock(o.compression, block)
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}

		if err := writeBlock(w, block, compressed, ok); err != nil {
			return err
		}
	}

	if err := crc.writeTo(w); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	return nil
}

// SaveFile writes a snapshot of src to a file, replacing it atomically.
func SaveFile(ctx context.Context, path string, src Source, opts ...Option) error {
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("snapshot: create %q: %w", tmp, err)
	}

	if err := Save(ctx, f, src, opts...); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("snapshot: sync %q: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("snapshot: close %q: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("snapshot: rename %q: %w", tmp, err)
	}

	return nil
}

// Restore reads a snapshot from r and writes the raw payload to path,
// replacing the file atomically. It returns the snapshot header, so callers
// can validate the element size before reopening the file as an array.
func Restore(ctx context.Context, r io.Reader, path string, opts ...Option) (Header, error) {
	o := applyOptions(opts...)

	header, err := readHeader(r)
	if err != nil {
		return Header{}, err
	}

	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return Header{}, fmt.Errorf("snapshot: create %q: %w", tmp, err)
	}

	if err := restorePayload(ctx, r, f, header, o.limiter); err != nil {
		f.Close()
		os.Remove(tmp)
		return Header{}, err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return Header{}, fmt.Errorf("snapshot: sync %q: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return Header{}, fmt.Errorf("snapshot: close %q: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return Header{}, fmt.Errorf("snapshot: rename %q: %w", tmp, err)
	}

	return header, nil
}

// RestoreFile reads a snapshot from a file and writes the payload to path.
func RestoreFile(ctx context.Context, snapshotPath, path string, opts ...Option) (Header, error) {
	f, err := os.Open(snapshotPath)
	if err != nil {
		return Header{}, fmt.Errorf("snapshot: open %q: %w", snapshotPath, err)
	}
	defer f.Close()

	return Restore(ctx, f, path, opts...)
}

func restorePayload(ctx context.Context, r io.Reader, w io.Writer, header Header, limiter *rate.Limiter) error {
	crc := newPayloadChecksum()
	block := make([]byte, header.BlockSize)

	remaining := header.PayloadSize()
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		rawLen, data, err := readBlock(r, block, header)
		if err != nil {
			return err
		}
		if int64(rawLen) > remaining {
			return fmt.Errorf("%w: block overruns payload", ErrInvalidFormat)
		}
		remaining -= int64(rawLen)

		if err := throttle(ctx, limiter, rawLen); err != nil {
			return err
		}

		crc.add(data)

		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("snapshot: write payload: %w", err)
		}
	}

	return crc.verify(r)
}

// writeBlock frames a block as [rawLen u32][compLen u32][data]; a zero
// compLen marks a raw block.
func writeBlock(w io.Writer, raw, compressed []byte, ok bool) error {
	var frame [8]byte
	binary.LittleEndian.PutUint32(frame[0:4], uint32(len(raw)))

	data := raw
	if ok {
		binary.LittleEndian.PutUint32(frame[4:8], uint32(len(compressed)))
		data = compressed
	}

	if _, err := w.Write(frame[:]); err != nil {
		return fmt.Errorf("snapshot: write block header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("snapshot: write block: %w", err)
	}

	return nil
}

// readBlock reads one framed block into scratch and returns the raw length
// and the decoded bytes.
func readBlock(r io.Reader, scratch []byte, header Header) (int, []byte, error) {
	var frame [8]byte
	if _, err := io.ReadFull(r, frame[:]); err != nil {
		return 0, nil, fmt.Errorf("%w: read block header: %w", ErrInvalidFormat, err)
	}

	rawLen := int(binary.LittleEndian.Uint32(frame[0:4]))
	compLen := int(binary.LittleEndian.Uint32(frame[4:8]))

	if rawLen <= 0 || rawLen > header.BlockSize {
		return 0, nil, fmt.Errorf("%w: block of %d bytes exceeds block size %d", ErrInvalidFormat, rawLen, header.BlockSize)
	}

	if compLen == 0 {
		if _, err := io.ReadFull(r, scratch[:rawLen]); err != nil {
			return 0, nil, fmt.Errorf("%w: read raw block: %w", ErrInvalidFormat, err)
		}
		return rawLen, scratch[:rawLen], nil
	}

	compressed := make([]byte, compLen)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return 0, nil, fmt.Errorf("%w: read compressed block: %w", ErrInvalidFormat, err)
	}

	if err := decompressBlock(header.Compression, compressed, scratch[:rawLen]); err != nil {
		return 0, nil, fmt.Errorf("snapshot: %w", err)
	}

	return rawLen, scratch[:rawLen], nil
}

// throttle charges n payload bytes against the limiter, in burst-sized
// installments so large blocks do not exceed the burst.
func throttle(ctx context.Context, limiter *rate.Limiter, n int) error {
	if limiter == nil {
		return nil
	}

	burst := limiter.Burst()
	for n > 0 {
		chunk := n
		if chunk > burst {
			chunk = burst
		}
		if err := limiter.WaitN(ctx, chunk); err != nil {
			return fmt.Errorf("snapshot: throttle: %w", err)
		}
		n -= chunk
	}

	return nil
}
