package tfrecord

import (
	"hash/crc32"
)

const maskDelta = 0xa282ead8

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// maskedCRC32C computes the rotated and offset Castagnoli checksum the
// TFRecord format stores alongside each length and payload.
func maskedCRC32C(data []byte) uint32 {
	c := crc32.Checksum(data, castagnoli)
	return ((c >> 15) | (c << 17)) + maskDelta
}
