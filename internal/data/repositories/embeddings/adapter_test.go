package embeddings

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Meesho/BharatMLStack/trainset-builder/internal/compression"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/config"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/config/enums"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/quantization"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/system"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/telemetry"
)

const testBottleneck = 4

func newTestAdapter(t *testing.T, fs afero.Fs, cfg config.EmbeddingStore) (*Adapter, *telemetry.Counters) {
	t.Helper()
	counters := telemetry.NewCounters(4)
	adapter, err := NewAdapter(NewFileStore(fs, "data"), cfg, testBottleneck, counters)
	require.NoError(t, err)
	return adapter, counters
}

func fp32Config() config.EmbeddingStore {
	return config.EmbeddingStore{
		Type:        config.StoreTypeFS,
		FSRoot:      "data",
		ValueDType:  enums.DataTypeFP32,
		Compression: compression.TypeNone,
	}
}

func writeBlob(t *testing.T, fs afero.Fs, id int64, blob []byte) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, filepath.Join("data", IDToPath(id)), blob, 0o644))
}

func TestAdapterHappyPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	adapter, counters := newTestAdapter(t, fs, fp32Config())

	want := []float32{0.5, -1.25, 3.5, 100}
	writeBlob(t, fs, 42, system.Float32VectorBytes(want))

	got, err := adapter.Fetch(context.Background(), 42, 2)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int64(0), counters.Snapshot()[telemetry.CounterError])
}

func TestAdapterImagesCountShortCircuit(t *testing.T) {
	adapter, counters := newTestAdapter(t, afero.NewMemMapFs(), fp32Config())

	for _, imagesCount := range []int64{0, -3} {
		got, err := adapter.Fetch(context.Background(), 42, imagesCount)
		require.NoError(t, err)
		assert.Nil(t, got)
	}

	snap := counters.Snapshot()
	assert.Equal(t, int64(0), snap[telemetry.CounterEmptyImages])
	assert.Equal(t, int64(0), snap[telemetry.CounterError])
}

func TestAdapterMissingEmbedding(t *testing.T) {
	adapter, counters := newTestAdapter(t, afero.NewMemMapFs(), fp32Config())

	got, err := adapter.Fetch(context.Background(), 42, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	snap := counters.Snapshot()
	assert.Equal(t, int64(1), snap[telemetry.CounterEmptyImages])
	assert.Equal(t, int64(0), snap[telemetry.CounterError])
}

func TestAdapterEmptyBlobSelfHeals(t *testing.T) {
	fs := afero.NewMemMapFs()
	adapter, counters := newTestAdapter(t, fs, fp32Config())
	writeBlob(t, fs, 42, []byte{})

	got, err := adapter.Fetch(context.Background(), 42, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, int64(1), counters.Snapshot()[telemetry.CounterError])

	// The corrupt file is gone, a second fetch counts it as missing.
	exists, err := afero.Exists(fs, filepath.Join("data", IDToPath(42)))
	require.NoError(t, err)
	assert.False(t, exists)

	got, err = adapter.Fetch(context.Background(), 42, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, int64(1), counters.Snapshot()[telemetry.CounterEmptyImages])
}

func TestAdapterWrongLengthFatal(t *testing.T) {
	fs := afero.NewMemMapFs()
	adapter, counters := newTestAdapter(t, fs, fp32Config())
	writeBlob(t, fs, 42, system.Float32VectorBytes([]float32{1, 2, 3}))

	_, err := adapter.Fetch(context.Background(), 42, 1)
	require.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, int64(1), counters.Snapshot()[telemetry.CounterError])

	// The malformed file is not deleted.
	exists, _ := afero.Exists(fs, filepath.Join("data", IDToPath(42)))
	assert.True(t, exists)
}

func TestAdapterZstdFP16Chain(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := fp32Config()
	cfg.ValueDType = enums.DataTypeFP16
	cfg.Compression = compression.TypeZSTD
	adapter, counters := newTestAdapter(t, fs, cfg)

	want := []float32{0.5, -1, 2, 1024}
	half, err := quantization.Convert(system.Float32VectorBytes(want), enums.DataTypeFP32, enums.DataTypeFP16)
	require.NoError(t, err)
	encoder, err := compression.GetEncoder(compression.TypeZSTD)
	require.NoError(t, err)
	blob := encoder.Encode(half)
	writeBlob(t, fs, 42, blob)

	got, err := adapter.Fetch(context.Background(), 42, 1)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int64(0), counters.Snapshot()[telemetry.CounterError])
}

func TestAdapterCorruptCompressedBlobFatal(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := fp32Config()
	cfg.Compression = compression.TypeZSTD
	adapter, counters := newTestAdapter(t, fs, cfg)
	writeBlob(t, fs, 42, []byte("definitely not zstd"))

	_, err := adapter.Fetch(context.Background(), 42, 1)
	require.ErrorIs(t, err, ErrCorruptBlob)
	assert.Equal(t, int64(1), counters.Snapshot()[telemetry.CounterError])
}

// flakyStore simulates a blob vanishing between Exists and Fetch, and a
// backend whose delete fails.
type flakyStore struct {
	fetchErr  error
	fetchBlob []byte
	deleteErr error
}

func (s *flakyStore) Exists(context.Context, int64) (bool, error) { return true, nil }
func (s *flakyStore) Fetch(context.Context, int64) ([]byte, error) {
	return s.fetchBlob, s.fetchErr
}
func (s *flakyStore) Delete(context.Context, int64) error { return s.deleteErr }
func (s *flakyStore) Type() string                        { return "flaky" }

func TestAdapterFetchRaceTreatedAsMissing(t *testing.T) {
	counters := telemetry.NewCounters(4)
	adapter, err := NewAdapter(&flakyStore{fetchErr: ErrNotFound}, fp32Config(), testBottleneck, counters)
	require.NoError(t, err)

	got, err := adapter.Fetch(context.Background(), 42, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, int64(1), counters.Snapshot()[telemetry.CounterEmptyImages])
}

func TestAdapterSelfHealDeleteFailurePropagates(t *testing.T) {
	counters := telemetry.NewCounters(4)
	deleteErr := errors.New("permission denied")
	adapter, err := NewAdapter(&flakyStore{fetchBlob: []byte{}, deleteErr: deleteErr}, fp32Config(), testBottleneck, counters)
	require.NoError(t, err)

	_, err = adapter.Fetch(context.Background(), 42, 1)
	require.ErrorIs(t, err, deleteErr)
	assert.Equal(t, int64(1), counters.Snapshot()[telemetry.CounterError])
}
