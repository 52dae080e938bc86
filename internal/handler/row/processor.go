// Package row holds the per-row transformation: one raw catalog line in,
// one serialized feature record out. Rows are independent, the only shared
// state is the read-only label dictionary and the increment-only counters.
package row

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Meesho/BharatMLStack/trainset-builder/internal/config"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/data/models"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/data/repositories/embeddings"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/data/tfexample"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/inference"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/labels"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/telemetry"
)

type Processor struct {
	schema   config.Schema
	resolver *labels.Resolver
	adapter  *embeddings.Adapter
	infer    inference.Client
	counters *telemetry.Counters
}

func NewProcessor(schema config.Schema, resolver *labels.Resolver, adapter *embeddings.Adapter, infer inference.Client, counters *telemetry.Counters) *Processor {
	return &Processor{
		schema:   schema,
		resolver: resolver,
		adapter:  adapter,
		infer:    infer,
		counters: counters,
	}
}

// Process transforms one input line. A nil record with a nil error means
// the line was skipped (empty line). An *InvalidRowError means the row's
// data was inconsistent with the schema; any other error is an external
// failure (storage, inference) or a configuration mismatch.
func (p *Processor) Process(ctx context.Context, line string) (*tfexample.Record, error) {
	if strings.TrimSpace(line) == "" {
		p.counters.IncSkippedEmptyLine()
		return nil, nil
	}
	p.counters.IncCSVRows()

	raw, err := models.ParseLine(line)
	if err != nil {
		p.counters.IncError()
		return nil, NewInvalidRowError(err.Error())
	}
	if err := raw.Validate(); err != nil {
		p.counters.IncError()
		return nil, NewInvalidRowError(err.Error())
	}

	labelIds, err := p.resolver.Resolve(raw.Label())
	if err != nil {
		// Dictionary/counter size mismatch, not row-scoped.
		return nil, err
	}

	id, err := raw.IDInt64()
	if err != nil {
		p.counters.IncError()
		return nil, NewInvalidRowError(err.Error())
	}
	imagesCount, err := raw.ImagesCount()
	if err != nil {
		p.counters.IncError()
		return nil, NewInvalidRowError(fmt.Sprintf("row %d: %v", id, err))
	}

	embedding, err := p.adapter.Fetch(ctx, id, imagesCount)
	if err != nil {
		return nil, fmt.Errorf("row %d: %w", id, err)
	}
	if embedding == nil {
		embedding = make([]float32, p.schema.BottleneckSize)
	}

	textEmbedding, textLength, err := p.extractText(raw.TextEmbeddingInline())
	if err != nil {
		p.counters.IncError()
		log.Error().Int64("id", id).Str("text", raw.TextEmbeddingInline()).Msg("Unparsable text tokens")
		return nil, NewInvalidRowError(fmt.Sprintf("row %d: %v", id, err))
	}
	if textLength == 0 {
		p.counters.IncNoTexts()
		log.Error().Int64("id", id).Str("text", raw.TextEmbeddingInline()).Msg("Row has no text tokens")
	}

	offerable, err := raw.Offerable()
	if err != nil {
		p.counters.IncError()
		return nil, NewInvalidRowError(fmt.Sprintf("row %d: %v", id, err))
	}
	createdAt, err := raw.CreatedAt()
	if err != nil {
		p.counters.IncError()
		return nil, NewInvalidRowError(fmt.Sprintf("row %d: %v", id, err))
	}
	extraEmbedding, err := p.infer.ExtraEmbedding(offerable, createdAt)
	if err != nil {
		return nil, fmt.Errorf("row %d: %w", id, err)
	}
	if len(extraEmbedding) != p.schema.ExtraEmbeddingSize {
		p.counters.IncError()
		return nil, NewInvalidRowError(fmt.Sprintf("row %d: extra embedding has %d values, want %d", id, len(extraEmbedding), p.schema.ExtraEmbeddingSize))
	}

	return p.assemble(raw, id, imagesCount, labelIds, embedding, textEmbedding, textLength, extraEmbedding)
}

// extractText parses the whitespace-separated token string into the fixed
// WORD_DIM*MAX_WORDS matrix. Shorter inputs are right-padded with zeros,
// longer inputs are truncated.
func (p *Processor) extractText(rawText string) ([]float32, int64, error) {
	tokens := strings.Fields(rawText)
	values := make([]float32, len(tokens))
	for i, token := range tokens {
		v, err := strconv.ParseFloat(token, 32)
		if err != nil {
			return nil, 0, fmt.Errorf("text token %q: %w", token, err)
		}
		values[i] = float32(v)
	}

	length := int64(len(values) / p.schema.WordDim)
	if length > int64(p.schema.MaxWords) {
		length = int64(p.schema.MaxWords)
	}
	padded := make([]float32, p.schema.WordDim*p.schema.MaxWords)
	copy(padded, values)
	return padded, length, nil
}

func (p *Processor) assemble(raw models.RawRow, id, imagesCount int64, labelIds []int64, embedding, textEmbedding []float32, textLength int64, extraEmbedding []float32) (*tfexample.Record, error) {
	categoryID, err := raw.CategoryID()
	if err != nil {
		p.counters.IncError()
		return nil, NewInvalidRowError(fmt.Sprintf("row %d: %v", id, err))
	}
	if categoryID < 1 || categoryID > int64(p.schema.TotalCategories) {
		p.counters.IncError()
		return nil, NewInvalidRowError(fmt.Sprintf("row %d: category_id %d outside [1, %d]", id, categoryID, p.schema.TotalCategories))
	}
	price, err := raw.Price()
	if err != nil {
		p.counters.IncError()
		return nil, NewInvalidRowError(fmt.Sprintf("row %d: %v", id, err))
	}
	recentArticlesCount, err := raw.RecentArticlesCount()
	if err != nil {
		p.counters.IncError()
		return nil, NewInvalidRowError(fmt.Sprintf("row %d: %v", id, err))
	}
	titleLength, err := raw.TitleLength()
	if err != nil {
		p.counters.IncError()
		return nil, NewInvalidRowError(fmt.Sprintf("row %d: %v", id, err))
	}
	contentLength, err := raw.ContentLength()
	if err != nil {
		p.counters.IncError()
		return nil, NewInvalidRowError(fmt.Sprintf("row %d: %v", id, err))
	}

	// Records are pooled; callers return them via tfexample.GetRecordPool().Put
	// once the serialized bytes are written out.
	record := tfexample.GetRecordPool().Get()
	record.Builder.
		SetID([]byte(strings.TrimSpace(raw.ID()))).
		SetEmbedding(embedding).
		SetTextEmbedding(textEmbedding).
		SetTextLength(textLength).
		SetExtraEmbedding(extraEmbedding).
		SetCategoryID(categoryID).
		SetPrice(price).
		SetImagesCount(imagesCount).
		SetRecentArticlesCount(recentArticlesCount).
		SetTitleLength(titleLength).
		SetContentLength(contentLength).
		SetBlocksInline([]byte(raw.BlocksInline())).
		SetUserName([]byte(raw.UserName())).
		SetLabels(labelIds)
	return record.Builder.Build()
}
