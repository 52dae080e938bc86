package telemetry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersSnapshotRegistersEverything(t *testing.T) {
	c := NewCounters(3)
	snap := c.Snapshot()

	assert.Len(t, snap, 11)
	assert.Equal(t, int64(0), snap[CounterError])
	assert.Equal(t, int64(0), snap[CounterMissingLabel])
	assert.Equal(t, int64(0), snap["LabelsCount0"])
	assert.Equal(t, int64(0), snap["LabelsCount2"])
	_, ok := snap["LabelsCount3"]
	assert.False(t, ok)
}

func TestCountersIncrement(t *testing.T) {
	c := NewCounters(2)
	c.IncError()
	c.IncError()
	c.IncCSVRows()
	c.IncSkippedEmptyLine()
	c.IncUnlabeledImage()
	c.IncUnknownLabel()
	c.IncEmptyImages()
	c.IncNoTexts()
	require.NoError(t, c.IncLabel(1))
	require.NoError(t, c.IncLabel(1))

	snap := c.Snapshot()
	assert.Equal(t, int64(2), snap[CounterError])
	assert.Equal(t, int64(1), snap[CounterCSVRows])
	assert.Equal(t, int64(1), snap[CounterSkippedEmptyLine])
	assert.Equal(t, int64(1), snap[CounterUnlabeledImage])
	assert.Equal(t, int64(1), snap[CounterUnknownLabel])
	assert.Equal(t, int64(1), snap[CounterEmptyImages])
	assert.Equal(t, int64(1), snap[CounterNoTexts])
	assert.Equal(t, int64(0), snap["LabelsCount0"])
	assert.Equal(t, int64(2), snap["LabelsCount1"])
}

func TestCountersLabelOutOfRange(t *testing.T) {
	c := NewCounters(2)
	require.Error(t, c.IncLabel(2))
	require.Error(t, c.IncLabel(-1))

	empty := NewCounters(0)
	require.Error(t, empty.IncLabel(0))
}

func TestCountersMerge(t *testing.T) {
	a := NewCounters(2)
	b := NewCounters(2)

	a.IncError()
	a.IncCSVRows()
	require.NoError(t, a.IncLabel(0))

	b.IncError()
	b.IncNoTexts()
	require.NoError(t, b.IncLabel(0))
	require.NoError(t, b.IncLabel(1))

	a.Merge(b)
	snap := a.Snapshot()
	assert.Equal(t, int64(2), snap[CounterError])
	assert.Equal(t, int64(1), snap[CounterCSVRows])
	assert.Equal(t, int64(1), snap[CounterNoTexts])
	assert.Equal(t, int64(2), snap["LabelsCount0"])
	assert.Equal(t, int64(1), snap["LabelsCount1"])
}

func TestCountersConcurrentIncrement(t *testing.T) {
	c := NewCounters(1)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.IncCSVRows()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(8000), c.CSVRows())
}
