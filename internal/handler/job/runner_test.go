package job

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Meesho/BharatMLStack/trainset-builder/internal/compression"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/config"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/config/enums"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/data/repositories/embeddings"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/data/tfexample"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/data/tfrecord"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/handler/row"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/inference"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/labels"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/system"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/telemetry"
	"github.com/Meesho/BharatMLStack/trainset-builder/pkg/ds"
)

const embeddingRoot = "data/image_embeddings"

func testJobConfig() *config.Job {
	return &config.Job{
		Schema: config.Schema{
			BottleneckSize:       4,
			WordDim:              2,
			MaxWords:             3,
			TotalCategories:      17,
			ExtraEmbeddingSize:   2,
			LabelCounterCapacity: 30,
		},
		Input:          config.Input{Path: "data/input"},
		Output:         config.Output{Path: "data/output", Shards: 2, GzipLevel: 1},
		Workers:        2,
		MaxRowFailures: 0,
	}
}

func testFactory(t *testing.T, fs afero.Fs, cfg *config.Job) ProcessorFactory {
	t.Helper()
	dict, err := labels.NewDictionary([]string{"labelx", "labely", "labela"})
	require.NoError(t, err)

	return func(counters *telemetry.Counters) (*row.Processor, error) {
		resolver := labels.NewResolver(dict, counters)
		store := embeddings.NewFileStore(fs, embeddingRoot)
		adapter, err := embeddings.NewAdapter(store, config.EmbeddingStore{
			ValueDType:  enums.DataTypeFP32,
			Compression: compression.TypeNone,
		}, cfg.Schema.BottleneckSize, counters)
		if err != nil {
			return nil, err
		}
		infer := &inference.MockClient{}
		infer.On("ExtraEmbedding", float32(1), float32(1577836800)).
			Return([]float32{0.5, -0.5}, nil).Maybe()
		return row.NewProcessor(cfg.Schema, resolver, adapter, infer, counters), nil
	}
}

func testRow(id int64, label string) string {
	return fmt.Sprintf("%d,%s,7,399,2,1577836800,1,5,block,18,240,seller,1 2 3 4", id, label)
}

func writeEmbedding(t *testing.T, fs afero.Fs, id int64, vec []float32) {
	t.Helper()
	path := filepath.Join(embeddingRoot, embeddings.IDToPath(id))
	require.NoError(t, afero.WriteFile(fs, path, system.Float32VectorBytes(vec), 0o644))
}

func readShardIDs(t *testing.T, fs afero.Fs, path string) []string {
	t.Helper()
	reader, err := tfrecord.OpenShard(fs, path)
	require.NoError(t, err)
	defer reader.Close()

	var ids []string
	for {
		payload, err := reader.Next()
		if err == io.EOF {
			return ids
		}
		require.NoError(t, err)
		example, err := tfexample.Unmarshal(payload)
		require.NoError(t, err)
		feat, ok := example.Feature(tfexample.FieldID)
		require.True(t, ok)
		ids = append(ids, string(feat.Bytes[0]))
	}
}

func TestRunnerProcessesAllFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := testJobConfig()

	for id := int64(1); id <= 6; id++ {
		writeEmbedding(t, fs, id, []float32{1, 2, 3, 4})
	}
	fileA := strings.Join([]string{testRow(1, "labela"), "", testRow(2, "labely")}, "\n")
	fileB := strings.Join([]string{testRow(3, "unknownlabel"), testRow(4, "labela")}, "\n")
	fileC := testRow(5, "labelx") + "\n" + testRow(6, "labela")
	require.NoError(t, afero.WriteFile(fs, "data/input/part-0.csv", []byte(fileA), 0o644))
	require.NoError(t, afero.WriteFile(fs, "data/input/part-1.csv", []byte(fileB), 0o644))
	require.NoError(t, afero.WriteFile(fs, "data/input/part-2.csv", []byte(fileC), 0o644))

	runner := NewRunner(fs, cfg, testFactory(t, fs, cfg))
	counters := telemetry.NewCounters(cfg.Schema.LabelCounterCapacity)
	require.NoError(t, runner.Run(context.Background(), counters))

	var ids []string
	for shard := 0; shard < cfg.Output.Shards; shard++ {
		path := tfrecord.ShardPath(filepath.Join(cfg.Output.Path, shardBaseName), shard, cfg.Output.Shards)
		ids = append(ids, readShardIDs(t, fs, path)...)
	}
	set := ds.NewOrderedSetFromSlice(ids)
	assert.Equal(t, 6, set.Size())

	snap := counters.Snapshot()
	assert.Equal(t, int64(6), snap[telemetry.CounterCSVRows])
	assert.Equal(t, int64(1), snap[telemetry.CounterSkippedEmptyLine])
	assert.Equal(t, int64(1), snap[telemetry.CounterUnknownLabel])
	assert.Equal(t, int64(1), snap[telemetry.CounterUnlabeledImage])
	assert.Equal(t, int64(3), snap["LabelsCount2"])
	assert.Equal(t, int64(1), snap["LabelsCount1"])
	assert.Equal(t, int64(1), snap["LabelsCount0"])
	assert.Equal(t, int64(0), snap[telemetry.CounterError])
}

func TestRunnerSingleFileInput(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := testJobConfig()
	cfg.Input.Path = "data/input/only.csv"
	cfg.Output.Shards = 1
	cfg.Workers = 1

	writeEmbedding(t, fs, 9, []float32{1, 2, 3, 4})
	require.NoError(t, afero.WriteFile(fs, cfg.Input.Path, []byte(testRow(9, "labela")), 0o644))

	runner := NewRunner(fs, cfg, testFactory(t, fs, cfg))
	counters := telemetry.NewCounters(cfg.Schema.LabelCounterCapacity)
	require.NoError(t, runner.Run(context.Background(), counters))
	assert.Equal(t, int64(1), counters.CSVRows())

	path := tfrecord.ShardPath(filepath.Join(cfg.Output.Path, shardBaseName), 0, 1)
	assert.Equal(t, []string{"9"}, readShardIDs(t, fs, path))
}

func TestRunnerAbortsOnRowFailureBudget(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := testJobConfig()
	cfg.Output.Shards = 1
	cfg.Workers = 1

	writeEmbedding(t, fs, 1, []float32{1, 2, 3, 4})
	// Second row has category_id 0, a schema violation.
	lines := testRow(1, "labela") + "\n" + "2,labela,0,399,2,1577836800,1,5,block,18,240,seller,1 2"
	require.NoError(t, afero.WriteFile(fs, "data/input/part-0.csv", []byte(lines), 0o644))

	runner := NewRunner(fs, cfg, testFactory(t, fs, cfg))
	counters := telemetry.NewCounters(cfg.Schema.LabelCounterCapacity)
	err := runner.Run(context.Background(), counters)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row failure budget")
	assert.Equal(t, int64(1), counters.Errors())
}

func TestRunnerToleratesFailuresWithinBudget(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := testJobConfig()
	cfg.Output.Shards = 1
	cfg.Workers = 1
	cfg.MaxRowFailures = 1

	writeEmbedding(t, fs, 1, []float32{1, 2, 3, 4})
	writeEmbedding(t, fs, 3, []float32{1, 2, 3, 4})
	lines := strings.Join([]string{
		testRow(1, "labela"),
		"2,labela,0,399,2,1577836800,1,5,block,18,240,seller,1 2",
		testRow(3, "labely"),
	}, "\n")
	require.NoError(t, afero.WriteFile(fs, "data/input/part-0.csv", []byte(lines), 0o644))

	runner := NewRunner(fs, cfg, testFactory(t, fs, cfg))
	counters := telemetry.NewCounters(cfg.Schema.LabelCounterCapacity)
	require.NoError(t, runner.Run(context.Background(), counters))
	assert.Equal(t, int64(3), counters.CSVRows())

	path := tfrecord.ShardPath(filepath.Join(cfg.Output.Path, shardBaseName), 0, 1)
	assert.Equal(t, []string{"1", "3"}, readShardIDs(t, fs, path))
}

func TestRunnerNoInputFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := testJobConfig()
	require.NoError(t, fs.MkdirAll(cfg.Input.Path, 0o755))

	runner := NewRunner(fs, cfg, testFactory(t, fs, cfg))
	err := runner.Run(context.Background(), telemetry.NewCounters(cfg.Schema.LabelCounterCapacity))
	require.Error(t, err)
}
