// Package job drives a full trainset build: it partitions the input files
// across a worker pool, runs every line through the row pipeline, and
// writes the surviving records to gzip-compressed output shards.
package job

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/Meesho/BharatMLStack/trainset-builder/internal/config"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/data/tfexample"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/data/tfrecord"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/handler/row"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/telemetry"
	"github.com/Meesho/BharatMLStack/trainset-builder/pkg/metric"
)

const (
	defaultMaxLineBytes = 1 << 20
	shardBaseName       = "trainset"
)

// ProcessorFactory builds one row processor around a worker-local counter
// set. Workers never share counters, the runner merges them at the end.
type ProcessorFactory func(counters *telemetry.Counters) (*row.Processor, error)

type Runner struct {
	fs      afero.Fs
	cfg     *config.Job
	factory ProcessorFactory
}

func NewRunner(fs afero.Fs, cfg *config.Job, factory ProcessorFactory) *Runner {
	return &Runner{fs: fs, cfg: cfg, factory: factory}
}

// Run processes every input file, folding worker counters into merged as
// shards complete. The job aborts on the first external failure, and on
// invalid rows once more than MaxRowFailures of them were seen.
func (r *Runner) Run(ctx context.Context, merged *telemetry.Counters) error {
	files, err := r.listInputs()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no input files under %s", r.cfg.Input.Path)
	}

	totalShards := r.cfg.Output.Shards
	if totalShards < 1 {
		totalShards = 1
	}
	workers := r.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > totalShards {
		workers = totalShards
	}
	log.Info().Int("files", len(files)).Int("shards", totalShards).Int("workers", workers).Msg("Starting trainset build")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mergeMu sync.Mutex
	var rowFailures atomic.Int64

	shards := make(chan int, totalShards)
	for i := 0; i < totalShards; i++ {
		shards <- i
	}
	close(shards)

	var wg sync.WaitGroup
	errChan := make(chan error, totalShards)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().Msgf("Panic recovered: %v", rec)
					metric.Count("trainset-builder.job.panic.count", 1, []string{"worker:" + fmt.Sprint(worker)})
					errChan <- fmt.Errorf("panic recovered in worker %d: %v", worker, rec)
					cancel()
				}
			}()
			for shard := range shards {
				counters, err := r.runShard(ctx, shard, totalShards, files, &rowFailures)
				if counters != nil {
					mergeMu.Lock()
					merged.Merge(counters)
					mergeMu.Unlock()
				}
				if err != nil {
					errChan <- fmt.Errorf("shard %d: %w", shard, err)
					cancel()
					return
				}
			}
		}(w)
	}

	go func() {
		wg.Wait()
		close(errChan)
	}()

	for err := range errChan {
		if err != nil {
			return err
		}
	}

	merged.Flush()
	return nil
}

// runShard writes one output shard from its slice of the input files.
func (r *Runner) runShard(ctx context.Context, shard, totalShards int, files []string, rowFailures *atomic.Int64) (*telemetry.Counters, error) {
	counters := telemetry.NewCounters(r.cfg.Schema.LabelCounterCapacity)
	processor, err := r.factory(counters)
	if err != nil {
		return nil, err
	}

	writer, err := tfrecord.NewShardWriter(r.fs, filepath.Join(r.cfg.Output.Path, shardBaseName), shard, totalShards, r.cfg.Output.GzipLevel)
	if err != nil {
		return counters, err
	}

	for i := shard; i < len(files); i += totalShards {
		if err := r.processFile(ctx, processor, writer, files[i], rowFailures); err != nil {
			writer.Close()
			return counters, err
		}
	}

	if err := writer.Close(); err != nil {
		return counters, err
	}
	log.Info().Int("shard", shard).Int64("records", writer.Records()).Str("path", writer.Path()).Msg("Shard complete")
	return counters, nil
}

func (r *Runner) processFile(ctx context.Context, processor *row.Processor, writer *tfrecord.ShardWriter, path string, rowFailures *atomic.Int64) error {
	file, err := r.fs.Open(path)
	if err != nil {
		return fmt.Errorf("opening input %s: %w", path, err)
	}
	defer file.Close()

	maxLine := r.cfg.Input.MaxLineBytes
	if maxLine <= 0 {
		maxLine = defaultMaxLineBytes
	}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLine)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		record, err := processor.Process(ctx, scanner.Text())
		if err != nil {
			var invalid *row.InvalidRowError
			if !errors.As(err, &invalid) {
				return err
			}
			log.Warn().Err(err).Str("file", path).Msg("Dropping invalid row")
			if rowFailures.Add(1) > int64(r.cfg.MaxRowFailures) {
				return fmt.Errorf("row failure budget of %d exhausted: %w", r.cfg.MaxRowFailures, err)
			}
			continue
		}
		if record == nil {
			continue
		}
		err = writer.Write(record.Serialize())
		tfexample.GetRecordPool().Put(record)
		if err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input %s: %w", path, err)
	}
	return nil
}

// listInputs resolves the configured input path to a sorted list of files.
// A directory is read recursively, dotfiles are skipped.
func (r *Runner) listInputs() ([]string, error) {
	info, err := r.fs.Stat(r.cfg.Input.Path)
	if err != nil {
		return nil, fmt.Errorf("input path %s: %w", r.cfg.Input.Path, err)
	}
	if !info.IsDir() {
		return []string{r.cfg.Input.Path}, nil
	}

	var files []string
	err = afero.Walk(r.fs, r.cfg.Input.Path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Base(path)[0] == '.' {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing inputs under %s: %w", r.cfg.Input.Path, err)
	}
	sort.Strings(files)
	return files, nil
}
