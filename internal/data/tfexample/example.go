// Package tfexample builds and serializes training records in the
// tensorflow.Example wire format. Only the three list kinds the format
// defines are supported, and serialization orders features by name so the
// same record always produces the same bytes.
package tfexample

import (
	"fmt"
	"math"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the tensorflow.Example message tree.
const (
	exampleFeaturesField = 1
	featuresEntryField   = 1
	entryKeyField        = 1
	entryValueField      = 2
	featureBytesField    = 1
	featureFloatsField   = 2
	featureIntsField     = 3
	listValuesField      = 1
)

type FeatureKind uint8

const (
	KindNone FeatureKind = iota
	KindBytes
	KindFloats
	KindInts
)

// Feature is one named list of a single kind. Exactly one of the value
// slices is meaningful, selected by Kind.
type Feature struct {
	Kind   FeatureKind
	Bytes  [][]byte
	Floats []float32
	Ints   []int64
}

// Example is a mutable feature map. The zero value is not usable, call New.
type Example struct {
	features map[string]Feature
}

func New() *Example {
	return &Example{features: make(map[string]Feature)}
}

func (e *Example) SetBytes(name string, values ...[]byte) {
	e.features[name] = Feature{Kind: KindBytes, Bytes: values}
}

func (e *Example) SetFloats(name string, values []float32) {
	e.features[name] = Feature{Kind: KindFloats, Floats: values}
}

func (e *Example) SetInts(name string, values []int64) {
	e.features[name] = Feature{Kind: KindInts, Ints: values}
}

func (e *Example) Feature(name string) (Feature, bool) {
	f, ok := e.features[name]
	return f, ok
}

func (e *Example) Len() int {
	return len(e.features)
}

// FeatureNames returns all feature names in lexicographic order.
func (e *Example) FeatureNames() []string {
	names := make([]string, 0, len(e.features))
	for name := range e.features {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset drops every feature, keeping the allocation for reuse.
func (e *Example) Reset() {
	for name := range e.features {
		delete(e.features, name)
	}
}

// Marshal serializes the example. Features are emitted in name order, so
// byte output is deterministic for a given feature set.
func (e *Example) Marshal() []byte {
	var features []byte
	for _, name := range e.FeatureNames() {
		entry := marshalEntry(name, e.features[name])
		features = protowire.AppendTag(features, featuresEntryField, protowire.BytesType)
		features = protowire.AppendBytes(features, entry)
	}

	var out []byte
	out = protowire.AppendTag(out, exampleFeaturesField, protowire.BytesType)
	out = protowire.AppendBytes(out, features)
	return out
}

func marshalEntry(name string, f Feature) []byte {
	var out []byte
	out = protowire.AppendTag(out, entryKeyField, protowire.BytesType)
	out = protowire.AppendString(out, name)
	out = protowire.AppendTag(out, entryValueField, protowire.BytesType)
	out = protowire.AppendBytes(out, marshalFeature(f))
	return out
}

func marshalFeature(f Feature) []byte {
	var list []byte
	var field protowire.Number

	switch f.Kind {
	case KindBytes:
		field = featureBytesField
		for _, b := range f.Bytes {
			list = protowire.AppendTag(list, listValuesField, protowire.BytesType)
			list = protowire.AppendBytes(list, b)
		}
	case KindFloats:
		field = featureFloatsField
		packed := make([]byte, 0, 4*len(f.Floats))
		for _, v := range f.Floats {
			packed = protowire.AppendFixed32(packed, math.Float32bits(v))
		}
		list = protowire.AppendTag(list, listValuesField, protowire.BytesType)
		list = protowire.AppendBytes(list, packed)
	case KindInts:
		field = featureIntsField
		packed := make([]byte, 0, len(f.Ints))
		for _, v := range f.Ints {
			packed = protowire.AppendVarint(packed, uint64(v))
		}
		list = protowire.AppendTag(list, listValuesField, protowire.BytesType)
		list = protowire.AppendBytes(list, packed)
	default:
		return nil
	}

	var out []byte
	out = protowire.AppendTag(out, field, protowire.BytesType)
	out = protowire.AppendBytes(out, list)
	return out
}

// Unmarshal parses a serialized example. Both packed and expanded numeric
// list encodings are accepted.
func Unmarshal(data []byte) (*Example, error) {
	e := New()
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("corrupt example: %w", protowire.ParseError(n))
		}
		data = data[n:]

		if num == exampleFeaturesField && typ == protowire.BytesType {
			features, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("corrupt features: %w", protowire.ParseError(n))
			}
			if err := e.unmarshalFeatures(features); err != nil {
				return nil, err
			}
			data = data[n:]
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return nil, fmt.Errorf("corrupt example field %d: %w", num, protowire.ParseError(n))
		}
		data = data[n:]
	}
	return e, nil
}

func (e *Example) unmarshalFeatures(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("corrupt feature map: %w", protowire.ParseError(n))
		}
		data = data[n:]

		if num == featuresEntryField && typ == protowire.BytesType {
			entry, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("corrupt feature entry: %w", protowire.ParseError(n))
			}
			if err := e.unmarshalEntry(entry); err != nil {
				return err
			}
			data = data[n:]
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return fmt.Errorf("corrupt feature map field %d: %w", num, protowire.ParseError(n))
		}
		data = data[n:]
	}
	return nil
}

func (e *Example) unmarshalEntry(data []byte) error {
	var name string
	var feature Feature

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("corrupt entry: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == entryKeyField && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return fmt.Errorf("corrupt entry key: %w", protowire.ParseError(n))
			}
			name = v
			data = data[n:]
		case num == entryValueField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("corrupt entry value: %w", protowire.ParseError(n))
			}
			f, err := unmarshalFeature(v)
			if err != nil {
				return err
			}
			feature = f
			data = data[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("corrupt entry field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}

	if name == "" && feature.Kind == KindNone {
		return nil
	}
	e.features[name] = feature
	return nil
}

func unmarshalFeature(data []byte) (Feature, error) {
	f := Feature{Kind: KindNone}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return f, fmt.Errorf("corrupt feature: %w", protowire.ParseError(n))
		}
		data = data[n:]

		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return f, fmt.Errorf("corrupt feature field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
			continue
		}

		list, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return f, fmt.Errorf("corrupt feature list: %w", protowire.ParseError(n))
		}
		data = data[n:]

		var err error
		switch num {
		case featureBytesField:
			f.Kind = KindBytes
			f.Bytes, err = unmarshalBytesList(list)
		case featureFloatsField:
			f.Kind = KindFloats
			f.Floats, err = unmarshalFloatList(list)
		case featureIntsField:
			f.Kind = KindInts
			f.Ints, err = unmarshalIntList(list)
		}
		if err != nil {
			return f, err
		}
	}
	return f, nil
}

func unmarshalBytesList(data []byte) ([][]byte, error) {
	var values [][]byte
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("corrupt bytes list: %w", protowire.ParseError(n))
		}
		data = data[n:]

		if num == listValuesField && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("corrupt bytes value: %w", protowire.ParseError(n))
			}
			values = append(values, append([]byte(nil), v...))
			data = data[n:]
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return nil, fmt.Errorf("corrupt bytes list field %d: %w", num, protowire.ParseError(n))
		}
		data = data[n:]
	}
	return values, nil
}

func unmarshalFloatList(data []byte) ([]float32, error) {
	var values []float32
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("corrupt float list: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == listValuesField && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("corrupt packed floats: %w", protowire.ParseError(n))
			}
			if len(packed)%4 != 0 {
				return nil, fmt.Errorf("packed float list length %d is not a multiple of 4", len(packed))
			}
			for len(packed) > 0 {
				bits, n := protowire.ConsumeFixed32(packed)
				if n < 0 {
					return nil, fmt.Errorf("corrupt packed float: %w", protowire.ParseError(n))
				}
				values = append(values, math.Float32frombits(bits))
				packed = packed[n:]
			}
			data = data[n:]
		case num == listValuesField && typ == protowire.Fixed32Type:
			bits, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return nil, fmt.Errorf("corrupt float value: %w", protowire.ParseError(n))
			}
			values = append(values, math.Float32frombits(bits))
			data = data[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("corrupt float list field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return values, nil
}

func unmarshalIntList(data []byte) ([]int64, error) {
	var values []int64
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("corrupt int list: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == listValuesField && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("corrupt packed ints: %w", protowire.ParseError(n))
			}
			for len(packed) > 0 {
				v, n := protowire.ConsumeVarint(packed)
				if n < 0 {
					return nil, fmt.Errorf("corrupt packed int: %w", protowire.ParseError(n))
				}
				values = append(values, int64(v))
				packed = packed[n:]
			}
			data = data[n:]
		case num == listValuesField && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("corrupt int value: %w", protowire.ParseError(n))
			}
			values = append(values, int64(v))
			data = data[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("corrupt int list field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return values, nil
}
