package tfrecord

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/Meesho/BharatMLStack/trainset-builder/pkg/metric"
)

// ShardPath names one output shard of a sharded record set.
func ShardPath(base string, shard, total int) string {
	return fmt.Sprintf("%s-%05d-of-%05d.tfrecord.gz", base, shard, total)
}

// ShardWriter appends framed records to one gzip-compressed shard file.
type ShardWriter struct {
	path    string
	file    afero.File
	gz      *gzip.Writer
	records *Writer
	tags    []string
	written int64
}

func NewShardWriter(fs afero.Fs, base string, shard, total, gzipLevel int) (*ShardWriter, error) {
	path := ShardPath(base, shard, total)
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating shard directory: %w", err)
		}
	}
	file, err := fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating shard %s: %w", path, err)
	}
	gz, err := gzip.NewWriterLevel(file, gzipLevel)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("gzip level %d: %w", gzipLevel, err)
	}
	return &ShardWriter{
		path:    path,
		file:    file,
		gz:      gz,
		records: NewWriter(gz),
		tags:    metric.BuildTag(metric.NewTag("shard", strconv.Itoa(shard))),
	}, nil
}

func (w *ShardWriter) Write(payload []byte) error {
	start := time.Now()
	if err := w.records.WriteRecord(payload); err != nil {
		return fmt.Errorf("writing record to %s: %w", w.path, err)
	}
	w.written++
	metric.Timing(metric.RecordWriteLatency, time.Since(start), w.tags)
	metric.Incr(metric.RecordsWrittenCount, w.tags)
	return nil
}

func (w *ShardWriter) Records() int64 {
	return w.written
}

func (w *ShardWriter) Path() string {
	return w.path
}

func (w *ShardWriter) Close() error {
	if err := w.gz.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("closing gzip stream for %s: %w", w.path, err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("closing shard %s: %w", w.path, err)
	}
	log.Info().Str("shard", w.path).Int64("records", w.written).Msg("Shard closed")
	return nil
}

// ShardReader streams records back out of one shard file.
type ShardReader struct {
	file afero.File
	gz   *gzip.Reader
	*Reader
}

func OpenShard(fs afero.Fs, path string) (*ShardReader, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening shard %s: %w", path, err)
	}
	gz, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("reading gzip header of %s: %w", path, err)
	}
	return &ShardReader{file: file, gz: gz, Reader: NewReader(gz)}, nil
}

func (r *ShardReader) Close() error {
	if err := r.gz.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}
