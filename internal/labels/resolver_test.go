package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Meesho/BharatMLStack/trainset-builder/internal/telemetry"
)

func newTestResolver(t *testing.T, capacity int) (*Resolver, *telemetry.Counters) {
	t.Helper()
	dict, err := NewDictionary([]string{"kurta", "saree", "lehenga"})
	require.NoError(t, err)
	counters := telemetry.NewCounters(capacity)
	return NewResolver(dict, counters), counters
}

func TestResolveKnownLabel(t *testing.T) {
	r, counters := newTestResolver(t, 30)

	ids, err := r.Resolve(" lehenga ")
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)

	snap := counters.Snapshot()
	assert.Equal(t, int64(1), snap["LabelsCount2"])
	assert.Equal(t, int64(0), snap[telemetry.CounterUnknownLabel])
	assert.Equal(t, int64(0), snap[telemetry.CounterUnlabeledImage])
}

func TestResolveUnknownLabel(t *testing.T) {
	r, counters := newTestResolver(t, 30)

	ids, err := r.Resolve("dupatta")
	require.NoError(t, err)
	assert.Empty(t, ids)

	snap := counters.Snapshot()
	assert.Equal(t, int64(1), snap[telemetry.CounterUnknownLabel])
	assert.Equal(t, int64(1), snap[telemetry.CounterUnlabeledImage])
}

func TestResolveEmptyLabel(t *testing.T) {
	r, counters := newTestResolver(t, 30)

	ids, err := r.Resolve("   ")
	require.NoError(t, err)
	assert.Empty(t, ids)

	snap := counters.Snapshot()
	assert.Equal(t, int64(0), snap[telemetry.CounterUnknownLabel])
	assert.Equal(t, int64(1), snap[telemetry.CounterUnlabeledImage])
}

func TestResolveIndexBeyondCounterCapacity(t *testing.T) {
	r, _ := newTestResolver(t, 2)

	_, err := r.Resolve("lehenga")
	require.Error(t, err)
}
