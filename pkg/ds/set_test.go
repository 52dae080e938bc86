package ds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetOperations(t *testing.T) {
	s := NewOrderedSet[int]()

	// Test Add
	s = s.Add(1).Add(2).Add(3)
	assert.True(t, s.Has(1), "Set should contain 1")
	assert.True(t, s.Has(2), "Set should contain 2")
	assert.True(t, s.Has(3), "Set should contain 3")
	assert.Equal(t, 3, s.Size())

	// Test Remove
	s = s.Remove(2)
	assert.False(t, s.Has(2), "Set should not contain 2")
	assert.Equal(t, 2, s.Size())

	// Test AddBatch
	batched := NewOrderedSet[string]().AddBatch([]string{"a", "b", "a", "c"})
	assert.Equal(t, 3, batched.Size(), "AddBatch should drop duplicates")
}

func TestSetInsertionOrder(t *testing.T) {
	s := NewOrderedSet[string]()
	for _, label := range []string{"daisy", "rose", "tulip", "daisy"} {
		s.Add(label)
	}

	var got []string
	s.FastKeyIterator(func(key string) {
		got = append(got, key)
	})
	assert.Equal(t, []string{"daisy", "rose", "tulip"}, got, "iteration should follow first insertion order")
}

func TestSetMeta(t *testing.T) {
	s := NewOrderedSet[string]()
	s.AddWithMeta("rose", 0)
	s.AddWithMeta("tulip", 1)

	assert.Equal(t, 0, s.GetMeta("rose"))
	assert.Equal(t, 1, s.GetMeta("tulip"))
	assert.Nil(t, s.GetMeta("daisy"), "missing element should have nil meta")

	// Re-adding replaces metadata but keeps position
	s.AddWithMeta("rose", 7)
	assert.Equal(t, 7, s.GetMeta("rose"))
	var first string
	s.Iterator(func(key string, _ interface{}) bool {
		first = key
		return false
	})
	assert.Equal(t, "rose", first)
}

func TestSetIteratorEarlyStop(t *testing.T) {
	s := NewOrderedSetFromSlice([]int{10, 20, 30})
	visited := 0
	s.Iterator(func(key int, _ interface{}) bool {
		visited++
		return visited < 2
	})
	assert.Equal(t, 2, visited)
}

func TestSyncMap(t *testing.T) {
	sm := NewSyncMap[string, int]()
	sm.Set("x", 1)
	sm.Set("y", 2)

	v, ok := sm.Get("x")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = sm.Get("z")
	assert.False(t, ok)
	assert.Equal(t, 2, sm.Len())
}
