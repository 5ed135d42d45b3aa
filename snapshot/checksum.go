package snapshot

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// payloadChecksum accumulates a CRC32 (IEEE) over the raw, uncompressed
// payload bytes.
type payloadChecksum struct {
	h hash.Hash32
}

func newPayloadChecksum() *payloadChecksum {
	return &payloadChecksum{h: crc32.NewIEEE()}
}

func (c *payloadChecksum) add(p []byte) {
	// hash.Hash Write never returns an error.
	_, _ = c.h.Write(p)
}

func (c *payloadChecksum) sum() uint32 {
	return c.h.Sum32()
}

func (c *payloadChecksum) writeTo(w io.Writer) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], c.sum())
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("write checksum: %w", err)
	}
	return nil
}

func (c *payloadChecksum) verify(r io.Reader) error {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return fmt.Errorf("%w: read checksum: %w", ErrInvalidFormat, err)
	}
	if binary.LittleEndian.Uint32(buf[:]) != c.sum() {
		return ErrChecksumMismatch
	}
	return nil
}
