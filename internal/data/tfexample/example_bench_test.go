package tfexample

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

func benchEmbedding(n int) []float32 {
	rng := rand.New(rand.NewSource(42))
	out := make([]float32, n)
	for i := range out {
		out[i] = rng.Float32()
	}
	return out
}

func BenchmarkRecordMarshal(b *testing.B) {
	embedding := benchEmbedding(2048)
	textEmbedding := benchEmbedding(6400)

	builder := NewRecordBuilder()
	record, err := builder.
		SetID([]byte("123456789")).
		SetEmbedding(embedding).
		SetTextEmbedding(textEmbedding).
		SetTextLength(17).
		SetExtraEmbedding([]float32{0.5, 0.25}).
		SetCategoryID(7).
		SetPrice(499).
		SetImagesCount(3).
		SetRecentArticlesCount(11).
		SetTitleLength(40).
		SetContentLength(200).
		SetBlocksInline([]byte("b1|b2|b3")).
		SetUserName([]byte("seller_42")).
		SetLabels([]int64{3}).
		Build()
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = record.Serialize()
	}
}

// BenchmarkArrowRecordBatch tracks the cost of the columnar alternative for
// the same row shape, for comparing batch export options.
func BenchmarkArrowRecordBatch(b *testing.B) {
	embedding := benchEmbedding(2048)

	pool := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.BinaryTypes.Binary},
		{Name: "category_id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "price", Type: arrow.PrimitiveTypes.Int64},
		{Name: "embedding", Type: arrow.ListOf(arrow.PrimitiveTypes.Float32)},
	}, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rb := array.NewRecordBuilder(pool, schema)
		rb.Field(0).(*array.BinaryBuilder).Append([]byte("123456789"))
		rb.Field(1).(*array.Int64Builder).Append(7)
		rb.Field(2).(*array.Int64Builder).Append(499)
		lb := rb.Field(3).(*array.ListBuilder)
		lb.Append(true)
		lb.ValueBuilder().(*array.Float32Builder).AppendValues(embedding, nil)

		rec := rb.NewRecord()
		var buf bytes.Buffer
		w := ipc.NewWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(pool))
		if err := w.Write(rec); err != nil {
			b.Fatal(err)
		}
		if err := w.Close(); err != nil {
			b.Fatal(err)
		}
		rec.Release()
		rb.Release()
	}
}
