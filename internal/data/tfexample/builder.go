package tfexample

import (
	"fmt"
	"sort"
	"strings"
)

// Feature names of a training record. Every record carries all of them.
const (
	FieldID                  = "id"
	FieldEmbedding           = "embedding"
	FieldTextEmbedding       = "text_embedding"
	FieldTextLength          = "text_length"
	FieldExtraEmbedding      = "extra_embedding"
	FieldCategoryID          = "category_id"
	FieldPrice               = "price"
	FieldImagesCount         = "images_count"
	FieldRecentArticlesCount = "recent_articles_count"
	FieldTitleLength         = "title_length"
	FieldContentLength       = "content_length"
	FieldBlocksInline        = "blocks_inline"
	FieldUserName            = "user_name"
	FieldLabel               = "label"
)

var fieldBits = map[string]uint16{
	FieldID:                  1 << 0,
	FieldEmbedding:           1 << 1,
	FieldTextEmbedding:       1 << 2,
	FieldTextLength:          1 << 3,
	FieldExtraEmbedding:      1 << 4,
	FieldCategoryID:          1 << 5,
	FieldPrice:               1 << 6,
	FieldImagesCount:         1 << 7,
	FieldRecentArticlesCount: 1 << 8,
	FieldTitleLength:         1 << 9,
	FieldContentLength:       1 << 10,
	FieldBlocksInline:        1 << 11,
	FieldUserName:            1 << 12,
	FieldLabel:               1 << 13,
}

const allFieldsMask = uint16(1)<<14 - 1

// Record is one fully assembled training example. Records come from the
// pool, are filled through their Builder, and serialize deterministically.
type Record struct {
	Builder *RecordBuilder
	example *Example
	set     uint16
}

// Example exposes the underlying feature map for inspection.
func (r *Record) Example() *Example {
	return r.example
}

// Serialize returns the record's wire bytes.
func (r *Record) Serialize() []byte {
	return r.example.Marshal()
}

// Clear resets the record for reuse.
func (r *Record) Clear() {
	r.example.Reset()
	r.set = 0
}

type RecordBuilder struct {
	record *Record
}

func NewRecordBuilder() *RecordBuilder {
	record := &Record{example: New()}
	record.Builder = &RecordBuilder{record: record}
	return record.Builder
}

func (b *RecordBuilder) SetID(id []byte) *RecordBuilder {
	b.record.example.SetBytes(FieldID, id)
	b.record.set |= fieldBits[FieldID]
	return b
}

func (b *RecordBuilder) SetEmbedding(values []float32) *RecordBuilder {
	b.record.example.SetFloats(FieldEmbedding, values)
	b.record.set |= fieldBits[FieldEmbedding]
	return b
}

func (b *RecordBuilder) SetTextEmbedding(values []float32) *RecordBuilder {
	b.record.example.SetFloats(FieldTextEmbedding, values)
	b.record.set |= fieldBits[FieldTextEmbedding]
	return b
}

func (b *RecordBuilder) SetTextLength(length int64) *RecordBuilder {
	b.record.example.SetInts(FieldTextLength, []int64{length})
	b.record.set |= fieldBits[FieldTextLength]
	return b
}

func (b *RecordBuilder) SetExtraEmbedding(values []float32) *RecordBuilder {
	b.record.example.SetFloats(FieldExtraEmbedding, values)
	b.record.set |= fieldBits[FieldExtraEmbedding]
	return b
}

func (b *RecordBuilder) SetCategoryID(id int64) *RecordBuilder {
	b.record.example.SetInts(FieldCategoryID, []int64{id})
	b.record.set |= fieldBits[FieldCategoryID]
	return b
}

func (b *RecordBuilder) SetPrice(price int64) *RecordBuilder {
	b.record.example.SetInts(FieldPrice, []int64{price})
	b.record.set |= fieldBits[FieldPrice]
	return b
}

func (b *RecordBuilder) SetImagesCount(count int64) *RecordBuilder {
	b.record.example.SetInts(FieldImagesCount, []int64{count})
	b.record.set |= fieldBits[FieldImagesCount]
	return b
}

func (b *RecordBuilder) SetRecentArticlesCount(count int64) *RecordBuilder {
	b.record.example.SetInts(FieldRecentArticlesCount, []int64{count})
	b.record.set |= fieldBits[FieldRecentArticlesCount]
	return b
}

func (b *RecordBuilder) SetTitleLength(length int64) *RecordBuilder {
	b.record.example.SetInts(FieldTitleLength, []int64{length})
	b.record.set |= fieldBits[FieldTitleLength]
	return b
}

func (b *RecordBuilder) SetContentLength(length int64) *RecordBuilder {
	b.record.example.SetInts(FieldContentLength, []int64{length})
	b.record.set |= fieldBits[FieldContentLength]
	return b
}

func (b *RecordBuilder) SetBlocksInline(value []byte) *RecordBuilder {
	b.record.example.SetBytes(FieldBlocksInline, value)
	b.record.set |= fieldBits[FieldBlocksInline]
	return b
}

func (b *RecordBuilder) SetUserName(value []byte) *RecordBuilder {
	b.record.example.SetBytes(FieldUserName, value)
	b.record.set |= fieldBits[FieldUserName]
	return b
}

func (b *RecordBuilder) SetLabels(indices []int64) *RecordBuilder {
	b.record.example.SetInts(FieldLabel, indices)
	b.record.set |= fieldBits[FieldLabel]
	return b
}

// Build validates that every field was set and returns the record.
func (b *RecordBuilder) Build() (*Record, error) {
	if b.record.set != allFieldsMask {
		return nil, fmt.Errorf("record incomplete, missing fields: %s", strings.Join(b.missingFields(), ", "))
	}
	return b.record, nil
}

func (b *RecordBuilder) missingFields() []string {
	var missing []string
	for name, bit := range fieldBits {
		if b.record.set&bit == 0 {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
