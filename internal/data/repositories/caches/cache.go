// Package caches holds the in-memory read-through cache for inference
// results. Scalar inputs repeat heavily across catalog rows, so the extra
// embedding for a given (offerable, created_at) pair is cached instead of
// asking the model server again.
package caches

import (
	"math"
	"strconv"
)

// VectorCache stores float32 vectors keyed by the scalar inputs that
// produced them.
type VectorCache interface {
	Get(key string) ([]float32, bool)
	Set(key string, vec []float32) error
}

// BuildKey renders the scalar inputs into a cache key. Bit-exact float
// encoding, two rows hash to the same entry only when the model would see
// identical tensors.
func BuildKey(offerable, createdAt float32) string {
	return strconv.FormatUint(uint64(math.Float32bits(offerable)), 16) +
		":" + strconv.FormatUint(uint64(math.Float32bits(createdAt)), 16)
}
