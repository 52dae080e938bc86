// Package embeddings resolves item image embeddings from one of several
// blob backends behind a single byte-oriented store contract. Decoding,
// shape validation and absence handling sit in the Adapter so every backend
// behaves identically.
package embeddings

import (
	"context"
	"errors"
)

var (
	// ErrNotFound reports an id with no stored blob.
	ErrNotFound = errors.New("embedding not found")
	// ErrCorruptBlob reports a non-empty payload that cannot be decoded.
	ErrCorruptBlob = errors.New("corrupt embedding payload")
	// ErrDimensionMismatch reports a decoded payload whose length does not
	// match the configured vector shape.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Store holds raw embedding blobs addressed by item id. Implementations do
// not interpret the bytes and do not retry.
type Store interface {
	Exists(ctx context.Context, id int64) (bool, error)
	Fetch(ctx context.Context, id int64) ([]byte, error)
	Delete(ctx context.Context, id int64) error
	Type() string
}
