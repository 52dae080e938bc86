package config

import (
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/compression"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/config/enums"
)

// Job is the full configuration of one trainset build. It is assembled once
// from the environment and treated as read-only afterwards.
type Job struct {
	Schema         Schema
	Input          Input
	Output         Output
	Labels         Labels
	EmbeddingStore EmbeddingStore
	Inference      Inference
	Workers        int
	MaxRowFailures int
}

// Schema fixes the shape of every produced record. All vector lengths are
// element counts, not bytes.
type Schema struct {
	BottleneckSize       int
	WordDim              int
	MaxWords             int
	TotalCategories      int
	ExtraEmbeddingSize   int
	LabelCounterCapacity int
}

// TextEmbeddingLen is the fixed element count of the padded text embedding.
func (s Schema) TextEmbeddingLen() int {
	return s.WordDim * s.MaxWords
}

type Input struct {
	Path         string
	MaxLineBytes int
}

type Output struct {
	Path      string
	Shards    int
	GzipLevel int
}

type LabelSource string

const (
	LabelSourceFile LabelSource = "file"
	LabelSourceEtcd LabelSource = "etcd"
)

type Labels struct {
	Source        LabelSource
	FilePath      string
	EtcdEndpoints []string
	EtcdKey       string
	EtcdTimeoutMs int
	EtcdUsername  string
	EtcdPassword  string
}

type StoreType string

const (
	StoreTypeFS     StoreType = "fs"
	StoreTypeGCS    StoreType = "gcs"
	StoreTypeS3     StoreType = "s3"
	StoreTypeScylla StoreType = "scylla"
	StoreTypeRedis  StoreType = "redis"
)

// EmbeddingStore selects and parameterizes the backend holding image
// embedding blobs. ValueDType and Compression apply to the KV backends,
// where values may be stored half-precision or zstd-framed.
type EmbeddingStore struct {
	Type StoreType

	FSRoot string

	GCSBucket          string
	GCSPrefix          string
	GCSCredentialsJSON string

	S3Bucket          string
	S3Prefix          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	ScyllaConfigID int
	ScyllaTable    string

	RedisConfigID  int
	RedisKeyPrefix string

	ValueDType  enums.DataType
	Compression compression.Type
}

type Inference struct {
	Host           string
	Port           string
	ModelName      string
	ModelVersion   string
	DeadlineMs     int
	PlainText      bool
	CallerID       string
	AuthToken      string
	OutputName     string
	InputOfferable string
	InputCreatedAt string
	CacheEnabled   bool
	CacheSizeMB    int
	CacheTTLSec    int
}
