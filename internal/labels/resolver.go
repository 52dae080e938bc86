package labels

import (
	"fmt"
	"strings"

	"github.com/Meesho/BharatMLStack/trainset-builder/internal/telemetry"
)

// Resolver turns a row's raw label field into zero-or-one label ids. The
// schema is multi-label capable, so ids come back as a list.
type Resolver struct {
	dict     *Dictionary
	counters *telemetry.Counters
}

func NewResolver(dict *Dictionary, counters *telemetry.Counters) *Resolver {
	return &Resolver{dict: dict, counters: counters}
}

// Resolve looks the trimmed label up in the dictionary. An unknown
// non-empty label and a row with no label at all are both tolerable data
// quality conditions: the row proceeds with an empty id list. A resolved
// index outside the counter capacity is a configuration mismatch between
// dictionary size and counter allocation and is fatal.
func (r *Resolver) Resolve(rawLabel string) ([]int64, error) {
	label := strings.TrimSpace(rawLabel)

	var ids []int64
	if idx, ok := r.dict.Lookup(label); ok {
		if err := r.counters.IncLabel(idx); err != nil {
			return nil, fmt.Errorf("label %q: %w", label, err)
		}
		ids = []int64{int64(idx)}
	} else if label != "" {
		r.counters.IncUnknownLabel()
	}

	if len(ids) == 0 {
		r.counters.IncUnlabeledImage()
	}
	return ids, nil
}
