package ds

import "container/list"

// Set is the interface for a generic insertion-ordered set.
type Set[T comparable] interface {
	Add(e T) Set[T]
	AddWithMeta(e T, meta interface{}) Set[T]
	AddBatch(elements []T) Set[T]
	Remove(e T) Set[T]
	Has(e T) bool
	GetMeta(e T) interface{}
	IsEmpty() bool
	Size() int
	Iterator(f func(T, interface{}) bool)
	FastKeyIterator(f func(T))
}

func NewOrderedSet[T comparable]() Set[T] {
	return &OrderedSet[T]{
		data:  make(map[T]*list.Element),
		order: list.New(),
	}
}

func NewOrderedSetWithCapacity[T comparable](capacity int) Set[T] {
	return &OrderedSet[T]{
		data:  make(map[T]*list.Element, capacity),
		order: list.New(),
	}
}

// NewOrderedSetFromSlice creates a new OrderedSet from a slice
func NewOrderedSetFromSlice[T comparable](slice []T) Set[T] {
	set := &OrderedSet[T]{
		data:  make(map[T]*list.Element, len(slice)),
		order: list.New(),
	}
	for _, item := range slice {
		set.Add(item)
	}
	return set
}

// OrderedSet is the concrete implementation of Set. Iteration yields
// elements in insertion order.
type OrderedSet[T comparable] struct {
	data  map[T]*list.Element
	order *list.List
}

// entry stores key-value pair in the linked list
type entry[T comparable] struct {
	key   T
	value interface{}
}

// Add returns the current OrderedSet by adding a new element.
func (s *OrderedSet[T]) Add(e T) Set[T] {
	if _, exists := s.data[e]; !exists {
		ent := &entry[T]{key: e}
		elem := s.order.PushBack(ent)
		s.data[e] = elem
	}
	return s
}

// AddWithMeta adds a new element carrying metadata. Re-adding an existing
// element replaces its metadata without disturbing its position.
func (s *OrderedSet[T]) AddWithMeta(e T, meta interface{}) Set[T] {
	if elem, exists := s.data[e]; !exists {
		ent := &entry[T]{key: e, value: meta}
		elem := s.order.PushBack(ent)
		s.data[e] = elem
	} else {
		elem.Value.(*entry[T]).value = meta
	}
	return s
}

func (s *OrderedSet[T]) AddBatch(elements []T) Set[T] {
	if len(s.data) == 0 {
		s.data = make(map[T]*list.Element, len(elements))
	}
	for _, e := range elements {
		s.Add(e)
	}
	return s
}

// Remove returns the current OrderedSet by removing an element.
func (s *OrderedSet[T]) Remove(e T) Set[T] {
	if elem, exists := s.data[e]; exists {
		s.order.Remove(elem)
		delete(s.data, e)
	}
	return s
}

// Has returns true when the element is in the OrderedSet. Otherwise, returns false.
func (s *OrderedSet[T]) Has(e T) bool {
	_, exists := s.data[e]
	return exists
}

// GetMeta returns the metadata for the element
func (s *OrderedSet[T]) GetMeta(e T) interface{} {
	if elem, exists := s.data[e]; exists {
		return elem.Value.(*entry[T]).value
	}
	return nil
}

// IsEmpty returns true if the set is empty
func (s *OrderedSet[T]) IsEmpty() bool {
	return len(s.data) == 0
}

func (s *OrderedSet[T]) Size() int {
	return len(s.data)
}

// Iterator walks elements in insertion order until f returns false.
// Elements removed inside f are unlinked on the way out.
func (s *OrderedSet[T]) Iterator(f func(T, interface{}) bool) {
	for e := s.order.Front(); e != nil; {
		next := e.Next() // Store next before potential deletion
		ent := e.Value.(*entry[T])

		if !f(ent.key, ent.value) {
			return
		}

		if _, exists := s.data[ent.key]; !exists {
			s.order.Remove(e)
		}

		e = next
	}
}

// FastKeyIterator provides a more efficient key-only iteration without deletion checks
func (s *OrderedSet[T]) FastKeyIterator(f func(T)) {
	for e := s.order.Front(); e != nil; e = e.Next() {
		ent := e.Value.(*entry[T])
		f(ent.key)
	}
}
