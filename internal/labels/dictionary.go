// Package labels loads the classifier's label dictionary and resolves raw
// label strings to dense indices. The dictionary is built once before the
// first row is processed and is read-only afterwards.
package labels

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Meesho/BharatMLStack/trainset-builder/pkg/ds"
)

var (
	// ErrEmptyDictionary reports a dictionary source with no usable entries.
	ErrEmptyDictionary = errors.New("label dictionary is empty")
)

// Dictionary maps label strings to their 0-based index in source order.
type Dictionary struct {
	labels  []string
	indices map[string]int
}

// NewDictionary builds a dictionary from raw entries. Entries are trimmed,
// blank lines are dropped, duplicates are rejected.
func NewDictionary(entries []string) (*Dictionary, error) {
	seen := ds.NewOrderedSetWithCapacity[string](len(entries))
	labels := make([]string, 0, len(entries))
	for i, entry := range entries {
		label := strings.TrimSpace(entry)
		if label == "" {
			continue
		}
		if seen.Has(label) {
			return nil, fmt.Errorf("duplicate label %q at line %d", label, i+1)
		}
		seen.Add(label)
		labels = append(labels, label)
	}
	if len(labels) == 0 {
		return nil, ErrEmptyDictionary
	}
	indices := make(map[string]int, len(labels))
	for i, label := range labels {
		indices[label] = i
	}
	return &Dictionary{labels: labels, indices: indices}, nil
}

// Lookup returns the index of a trimmed label.
func (d *Dictionary) Lookup(label string) (int, bool) {
	idx, ok := d.indices[label]
	return idx, ok
}

func (d *Dictionary) Size() int {
	return len(d.labels)
}

// Labels returns the dictionary entries in index order.
func (d *Dictionary) Labels() []string {
	return d.labels
}
