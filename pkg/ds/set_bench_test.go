package ds

import (
	"strconv"
	"testing"
)

func benchLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = "label-" + strconv.Itoa(i)
	}
	return labels
}

func BenchmarkOrderedSetAdd(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		labels := benchLabels(n)
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				s := NewOrderedSetWithCapacity[string](n)
				for _, l := range labels {
					s.Add(l)
				}
			}
		})
	}
}

func BenchmarkOrderedSetAddBatch(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		labels := benchLabels(n)
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				NewOrderedSetWithCapacity[string](n).AddBatch(labels)
			}
		})
	}
}

func BenchmarkOrderedSetHas(b *testing.B) {
	s := NewOrderedSetFromSlice(benchLabels(1000))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !s.Has("label-999") {
			b.Fatal("element missing")
		}
	}
}

func BenchmarkOrderedSetIterator(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		s := NewOrderedSetFromSlice(benchLabels(n))
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				s.Iterator(func(string, interface{}) bool { return true })
			}
		})
	}
}

func BenchmarkOrderedSetFastKeyIterator(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		s := NewOrderedSetFromSlice(benchLabels(n))
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				s.FastKeyIterator(func(string) {})
			}
		})
	}
}
