package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	headerSize    = 32
	formatVersion = 1
)

var magic = [8]byte{'F', 'A', 'R', 'S', 'N', 'A', 'P', 0x01}

var (
	// ErrInvalidFormat is returned when the input is not a snapshot.
	ErrInvalidFormat = errors.New("snapshot: invalid format")
	// ErrChecksumMismatch is returned when the payload checksum does not
	// match the stored one.
	ErrChecksumMismatch = errors.New("snapshot: checksum mismatch")
)

// Header describes a snapshot's layout and provenance.
type Header struct {
	// Compression is the block codec.
	Compression Compression
	// BlockSize is the uncompressed block size in bytes.
	BlockSize int
	// ElementSize is the size of one element in bytes.
	ElementSize int
	// Count is the number of elements in the payload.
	Count int64
}

// PayloadSize returns the raw payload size in bytes.
func (h Header) PayloadSize() int64 {
	return h.Count * int64(h.ElementSize)
}

func (h Header) encode() [headerSize]byte {
	var buf [headerSize]byte
	copy(buf[0:8], magic[:])
	binary.LittleEndian.PutUint16(buf[8:10], formatVersion)
	buf[10] = byte(h.Compression)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(h.BlockSize))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(h.ElementSize))
	binary.LittleEndian.PutUint64(buf[20:28], uint64(h.Count))
	return buf
}

func readHeader(r io.Reader) (Header, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, fmt.Errorf("%w: read header: %w", ErrInvalidFormat, err)
	}

	if [8]byte(buf[0:8]) != magic {
		return Header{}, fmt.Errorf("%w: bad magic", ErrInvalidFormat)
	}

	if v := binary.LittleEndian.Uint16(buf[8:10]); v != formatVersion {
		return Header{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidFormat, v)
	}

	h := Header{
		Compression: Compression(buf[10]),
		BlockSize:   int(binary.LittleEndian.Uint32(buf[12:16])),
		ElementSize: int(binary.LittleEndian.Uint32(buf[16:20])),
		Count:       int64(binary.LittleEndian.Uint64(buf[20:28])),
	}

	if !h.Compression.valid() {
		return Header{}, fmt.Errorf("%w: unknown compression %d", ErrInvalidFormat, h.Compression)
	}
	// Cap the block size so a corrupt header cannot trigger a huge
	// allocation.
	if h.BlockSize <= 0 || h.BlockSize > 1<<30 || h.ElementSize <= 0 || h.Count < 0 {
		return Header{}, fmt.Errorf("%w: implausible header", ErrInvalidFormat)
	}

	return h, nil
}
