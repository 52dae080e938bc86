package compression

import (
	"fmt"
	"testing"
)

// Embedding blobs span a few hundred bytes for a single vector up to a few
// hundred KB for multi-image offers, so both ends are benchmarked.
var benchSizes = []int{512, 8192, 262144}

func BenchmarkZStdEncode(b *testing.B) {
	for _, size := range benchSizes {
		data := populateFP32Bytes(size / 4)
		enc := NewZStdEncoder()
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			for i := 0; i < b.N; i++ {
				cdata := enc.Encode(data)
				if len(cdata) == 0 {
					b.Fatalf("empty compressed output for %d input bytes", len(data))
				}
			}
		})
	}
}

func BenchmarkZStdDecode(b *testing.B) {
	for _, size := range benchSizes {
		data := populateFP32Bytes(size / 4)
		cdata := NewZStdEncoder().Encode(data)
		dec := NewZStdDecoder()
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			for i := 0; i < b.N; i++ {
				ddata, err := dec.Decode(cdata)
				if err != nil {
					b.Fatalf("decoding benchmark payload: %v", err)
				}
				if len(ddata) != len(data) {
					b.Fatalf("decoded %d bytes, want %d", len(ddata), len(data))
				}
			}
		})
	}
}
