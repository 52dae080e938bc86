package tfrecord

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klauspost/compress/gzip"
)

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	payloads := [][]byte{
		[]byte("first"),
		{},
		[]byte("a longer third record with more bytes in it"),
	}
	for _, p := range payloads {
		require.NoError(t, w.WriteRecord(p))
	}

	r := NewReader(&buf)
	for i, want := range payloads {
		got, err := r.Next()
		require.NoError(t, err, "record %d", i)
		assert.Equal(t, want, append([]byte{}, got...), "record %d", i)
	}
	_, err := r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestWriterDeterministic(t *testing.T) {
	var first, second bytes.Buffer
	require.NoError(t, NewWriter(&first).WriteRecord([]byte("same payload")))
	require.NoError(t, NewWriter(&second).WriteRecord([]byte("same payload")))
	assert.Equal(t, first.Bytes(), second.Bytes())
	// 8 length bytes, 4 length crc, payload, 4 payload crc.
	assert.Equal(t, 8+4+12+4, first.Len())
}

func TestReaderDetectsCorruption(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteRecord([]byte("payload under test")))

	flipAt := func(idx int) []byte {
		b := append([]byte{}, buf.Bytes()...)
		b[idx] ^= 0xff
		return b
	}

	// Corrupt length prefix.
	_, err := NewReader(bytes.NewReader(flipAt(0))).Next()
	require.ErrorIs(t, err, ErrChecksum)

	// Corrupt payload byte.
	_, err = NewReader(bytes.NewReader(flipAt(14))).Next()
	require.ErrorIs(t, err, ErrChecksum)

	// Corrupt trailing crc.
	_, err = NewReader(bytes.NewReader(flipAt(buf.Len() - 1))).Next()
	require.ErrorIs(t, err, ErrChecksum)
}

func TestReaderTruncation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteRecord([]byte("payload under test")))

	full := buf.Bytes()

	_, err := NewReader(bytes.NewReader(full[:6])).Next()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = NewReader(bytes.NewReader(full[:16])).Next()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = NewReader(bytes.NewReader(full[:len(full)-2])).Next()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReaderCleanEOF(t *testing.T) {
	_, err := NewReader(bytes.NewReader(nil)).Next()
	assert.Equal(t, io.EOF, err)
}

func TestShardPath(t *testing.T) {
	assert.Equal(t, "out/train-00002-of-00015.tfrecord.gz", ShardPath("out/train", 2, 15))
	assert.Equal(t, "train-00000-of-00003.tfrecord.gz", ShardPath("train", 0, 3))
}

func TestShardWriterRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()

	w, err := NewShardWriter(fs, "out/nested/train", 1, 4, gzip.BestSpeed)
	require.NoError(t, err)
	assert.Equal(t, "out/nested/train-00001-of-00004.tfrecord.gz", w.Path())

	payloads := [][]byte{[]byte("alpha"), []byte("beta"), []byte("gamma")}
	for _, p := range payloads {
		require.NoError(t, w.Write(p))
	}
	assert.Equal(t, int64(3), w.Records())
	require.NoError(t, w.Close())

	r, err := OpenShard(fs, w.Path())
	require.NoError(t, err)
	defer r.Close()

	for _, want := range payloads {
		got, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, want, append([]byte{}, got...))
	}
	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestShardWriterRejectsBadGzipLevel(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := NewShardWriter(fs, "train", 0, 1, 42)
	require.Error(t, err)
}

func TestOpenShardMissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := OpenShard(fs, "absent-00000-of-00001.tfrecord.gz")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrChecksum))
}
