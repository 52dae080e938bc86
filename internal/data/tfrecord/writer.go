package tfrecord

import (
	"io"

	"github.com/Meesho/BharatMLStack/trainset-builder/internal/system"
)

// Writer frames payloads in the TFRecord layout: little-endian length,
// masked CRC of the length bytes, payload, masked CRC of the payload.
type Writer struct {
	w      io.Writer
	header [12]byte
	footer [4]byte
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) WriteRecord(payload []byte) error {
	system.ByteOrder.PutUint64(w.header[:8], uint64(len(payload)))
	system.ByteOrder.PutUint32(w.header[8:12], maskedCRC32C(w.header[:8]))
	if _, err := w.w.Write(w.header[:]); err != nil {
		return err
	}
	if _, err := w.w.Write(payload); err != nil {
		return err
	}
	system.ByteOrder.PutUint32(w.footer[:], maskedCRC32C(payload))
	_, err := w.w.Write(w.footer[:])
	return err
}
