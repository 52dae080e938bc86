package tfrecord

import (
	"errors"
	"fmt"
	"io"

	"github.com/Meesho/BharatMLStack/trainset-builder/internal/system"
)

// maxRecordBytes caps a single record so a corrupt length prefix cannot
// drive an arbitrary allocation.
const maxRecordBytes = 1 << 30

var ErrChecksum = errors.New("tfrecord: checksum mismatch")

// Reader iterates records from a TFRecord stream. Next returns io.EOF at a
// clean end of stream, io.ErrUnexpectedEOF on truncation and ErrChecksum on
// corruption.
type Reader struct {
	r      io.Reader
	header [12]byte
	footer [4]byte
	buf    []byte
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Next returns the payload of the next record. The returned slice is reused
// across calls, copy it to retain.
func (r *Reader) Next() ([]byte, error) {
	if _, err := io.ReadFull(r.r, r.header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("tfrecord: reading header: %w", err)
	}

	length := system.ByteOrder.Uint64(r.header[:8])
	if got, want := maskedCRC32C(r.header[:8]), system.ByteOrder.Uint32(r.header[8:12]); got != want {
		return nil, fmt.Errorf("%w: length crc %08x, want %08x", ErrChecksum, got, want)
	}
	if length > maxRecordBytes {
		return nil, fmt.Errorf("tfrecord: record length %d exceeds limit", length)
	}

	if uint64(cap(r.buf)) < length {
		r.buf = make([]byte, length)
	}
	r.buf = r.buf[:length]
	if _, err := io.ReadFull(r.r, r.buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("tfrecord: reading payload: %w", err)
	}
	if _, err := io.ReadFull(r.r, r.footer[:]); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("tfrecord: reading payload crc: %w", err)
	}
	if got, want := maskedCRC32C(r.buf), system.ByteOrder.Uint32(r.footer[:]); got != want {
		return nil, fmt.Errorf("%w: payload crc %08x, want %08x", ErrChecksum, got, want)
	}
	return r.buf, nil
}
