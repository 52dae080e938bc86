package embeddings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Meesho/BharatMLStack/trainset-builder/internal/compression"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/config"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/config/enums"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/quantization"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/system"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/telemetry"
	"github.com/Meesho/BharatMLStack/trainset-builder/pkg/metric"
)

// Adapter resolves an item's image embedding to a fixed-length fp32 vector.
// A nil vector with a nil error means the embedding is absent, which is a
// valid terminal state for a row. The adapter never retries.
type Adapter struct {
	store          Store
	decoder        compression.Decoder
	valueDType     enums.DataType
	bottleneckSize int
	counters       *telemetry.Counters
	tags           []string
}

func NewAdapter(store Store, cfg config.EmbeddingStore, bottleneckSize int, counters *telemetry.Counters) (*Adapter, error) {
	decoder, err := compression.GetDecoder(cfg.Compression)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		store:          store,
		decoder:        decoder,
		valueDType:     cfg.ValueDType,
		bottleneckSize: bottleneckSize,
		counters:       counters,
		tags:           metric.BuildTag(metric.NewTag(metric.TagStore, store.Type())),
	}, nil
}

// Fetch returns the embedding for id, or nil when absent. A declared image
// count below 1 short-circuits without touching storage. A zero-byte stored
// payload is deleted and treated as absent. Any other malformed payload is
// an error the caller must treat as fatal for the row.
func (a *Adapter) Fetch(ctx context.Context, id, imagesCount int64) ([]float32, error) {
	if imagesCount < 1 {
		return nil, nil
	}

	exists, err := a.store.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		a.missing(id)
		return nil, nil
	}

	start := time.Now()
	raw, err := a.store.Fetch(ctx, id)
	if err != nil {
		// The blob can vanish between the existence check and the read.
		if errors.Is(err, ErrNotFound) {
			a.missing(id)
			return nil, nil
		}
		return nil, err
	}
	metric.Timing(metric.EmbeddingFetchLatency, time.Since(start), a.tags)
	metric.Incr(metric.EmbeddingFetchCount, a.tags)

	if len(raw) == 0 {
		a.counters.IncError()
		log.Error().Int64("id", id).Str("store", a.store.Type()).Msg("Empty embedding payload, deleting")
		if err := a.store.Delete(ctx, id); err != nil {
			return nil, err
		}
		return nil, nil
	}

	decoded, err := a.decoder.Decode(raw)
	if err != nil {
		a.counters.IncError()
		return nil, fmt.Errorf("id %d: %w: %v", id, ErrCorruptBlob, err)
	}
	fp32, err := quantization.Convert(decoded, a.valueDType, enums.DataTypeFP32)
	if err != nil {
		a.counters.IncError()
		return nil, fmt.Errorf("id %d: %w: %v", id, ErrCorruptBlob, err)
	}
	if want := a.bottleneckSize * 4; len(fp32) != want {
		a.counters.IncError()
		return nil, fmt.Errorf("id %d: %w: payload is %d bytes, want %d", id, ErrDimensionMismatch, len(fp32), want)
	}
	return system.ByteOrder.Float32Vector(fp32), nil
}

func (a *Adapter) missing(id int64) {
	a.counters.IncEmptyImages()
	log.Warn().Int64("id", id).Str("store", a.store.Type()).Msg("Embedding missing")
}
