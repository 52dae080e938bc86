package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"

	"github.com/Meesho/BharatMLStack/trainset-builder/internal/compression"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/config/enums"
)

const (
	jobInputPath      = "JOB_INPUT_PATH"
	jobInputMaxLine   = "JOB_INPUT_MAX_LINE_BYTES"
	jobOutputPath     = "JOB_OUTPUT_PATH"
	jobOutputShards   = "JOB_OUTPUT_SHARDS"
	jobOutputGzip     = "JOB_OUTPUT_GZIP_LEVEL"
	jobWorkers        = "JOB_WORKERS"
	jobMaxRowFailures = "JOB_MAX_ROW_FAILURES"

	schemaBottleneckSize     = "SCHEMA_BOTTLENECK_SIZE"
	schemaWordDim            = "SCHEMA_WORD_DIM"
	schemaMaxWords           = "SCHEMA_MAX_WORDS"
	schemaTotalCategories    = "SCHEMA_TOTAL_CATEGORIES"
	schemaExtraEmbeddingSize = "SCHEMA_EXTRA_EMBEDDING_SIZE"
	schemaLabelCounterCap    = "SCHEMA_LABEL_COUNTER_CAPACITY"

	labelsSource       = "LABELS_SOURCE"
	labelsFilePath     = "LABELS_FILE_PATH"
	labelsEtcdEndpoint = "LABELS_ETCD_ENDPOINTS"
	labelsEtcdKey      = "LABELS_ETCD_KEY"
	labelsEtcdTimeout  = "LABELS_ETCD_TIMEOUT_IN_MS"
	labelsEtcdUsername = "LABELS_ETCD_USERNAME"
	labelsEtcdPassword = "LABELS_ETCD_PASSWORD"

	storeType          = "EMBEDDING_STORE_TYPE"
	storeFSRoot        = "EMBEDDING_STORE_FS_ROOT"
	storeGCSBucket     = "EMBEDDING_STORE_GCS_BUCKET"
	storeGCSPrefix     = "EMBEDDING_STORE_GCS_PREFIX"
	storeGCSCreds      = "EMBEDDING_STORE_GCS_CREDENTIALS_JSON"
	storeS3Bucket      = "EMBEDDING_STORE_S3_BUCKET"
	storeS3Prefix      = "EMBEDDING_STORE_S3_PREFIX"
	storeS3Region      = "EMBEDDING_STORE_S3_REGION"
	storeS3Endpoint    = "EMBEDDING_STORE_S3_ENDPOINT"
	storeS3AccessKey   = "EMBEDDING_STORE_S3_ACCESS_KEY_ID"
	storeS3SecretKey   = "EMBEDDING_STORE_S3_SECRET_ACCESS_KEY"
	storeScyllaConfID  = "EMBEDDING_STORE_SCYLLA_CONFIG_ID"
	storeScyllaTable   = "EMBEDDING_STORE_SCYLLA_TABLE"
	storeRedisConfID   = "EMBEDDING_STORE_REDIS_CONFIG_ID"
	storeRedisPrefix   = "EMBEDDING_STORE_REDIS_KEY_PREFIX"
	storeValueDType    = "EMBEDDING_STORE_VALUE_DTYPE"
	storeCompression   = "EMBEDDING_STORE_COMPRESSION"

	inferHost           = "INFERENCE_HOST"
	inferPort           = "INFERENCE_PORT"
	inferModelName      = "INFERENCE_MODEL_NAME"
	inferModelVersion   = "INFERENCE_MODEL_VERSION"
	inferDeadline       = "INFERENCE_DEADLINE_IN_MS"
	inferPlainText      = "INFERENCE_PLAIN_TEXT"
	inferCallerID       = "INFERENCE_CALLER_ID"
	inferAuthToken      = "INFERENCE_AUTH_TOKEN"
	inferOutputName     = "INFERENCE_OUTPUT_NAME"
	inferInputOfferable = "INFERENCE_INPUT_OFFERABLE"
	inferInputCreatedAt = "INFERENCE_INPUT_CREATED_AT"
	inferCacheEnabled   = "INFERENCE_CACHE_ENABLED"
	inferCacheSize      = "INFERENCE_CACHE_SIZE_IN_MB"
	inferCacheTTL       = "INFERENCE_CACHE_TTL_IN_S"
)

func setDefaults() {
	viper.SetDefault(jobInputMaxLine, 4*1024*1024)
	viper.SetDefault(jobOutputShards, 0)
	viper.SetDefault(jobOutputGzip, 6)
	viper.SetDefault(jobWorkers, 3)
	viper.SetDefault(jobMaxRowFailures, 0)

	viper.SetDefault(schemaBottleneckSize, 2048)
	viper.SetDefault(schemaWordDim, 100)
	viper.SetDefault(schemaMaxWords, 64)
	viper.SetDefault(schemaTotalCategories, 17)
	viper.SetDefault(schemaExtraEmbeddingSize, 2)
	viper.SetDefault(schemaLabelCounterCap, 30)

	viper.SetDefault(labelsSource, string(LabelSourceFile))
	viper.SetDefault(labelsEtcdTimeout, 5000)

	viper.SetDefault(storeType, string(StoreTypeFS))
	viper.SetDefault(storeFSRoot, "data/image_embeddings")
	viper.SetDefault(storeValueDType, "FP32")
	viper.SetDefault(storeCompression, "none")

	viper.SetDefault(inferModelVersion, "")
	viper.SetDefault(inferDeadline, 2000)
	viper.SetDefault(inferPlainText, true)
	viper.SetDefault(inferOutputName, "extra_embeddings")
	viper.SetDefault(inferInputOfferable, "input_offerable")
	viper.SetDefault(inferInputCreatedAt, "input_created_at_ts")
	viper.SetDefault(inferCacheEnabled, false)
	viper.SetDefault(inferCacheSize, 16)
	viper.SetDefault(inferCacheTTL, 600)
}

// BuildJobFromEnv assembles the job configuration from the environment,
// validating that every key required by the selected backends is present.
func BuildJobFromEnv() (*Job, error) {
	setDefaults()

	if !viper.IsSet(jobInputPath) {
		return nil, errors.New(jobInputPath + " not set")
	}
	if !viper.IsSet(jobOutputPath) {
		return nil, errors.New(jobOutputPath + " not set")
	}

	job := &Job{
		Schema: Schema{
			BottleneckSize:       viper.GetInt(schemaBottleneckSize),
			WordDim:              viper.GetInt(schemaWordDim),
			MaxWords:             viper.GetInt(schemaMaxWords),
			TotalCategories:      viper.GetInt(schemaTotalCategories),
			ExtraEmbeddingSize:   viper.GetInt(schemaExtraEmbeddingSize),
			LabelCounterCapacity: viper.GetInt(schemaLabelCounterCap),
		},
		Input: Input{
			Path:         viper.GetString(jobInputPath),
			MaxLineBytes: viper.GetInt(jobInputMaxLine),
		},
		Output: Output{
			Path:      viper.GetString(jobOutputPath),
			Shards:    viper.GetInt(jobOutputShards),
			GzipLevel: viper.GetInt(jobOutputGzip),
		},
		Workers:        viper.GetInt(jobWorkers),
		MaxRowFailures: viper.GetInt(jobMaxRowFailures),
	}
	if job.Workers <= 0 {
		return nil, errors.New(jobWorkers + " must be positive")
	}
	if job.Output.Shards == 0 {
		job.Output.Shards = job.Workers
	}

	if err := buildLabels(job); err != nil {
		return nil, err
	}
	if err := buildEmbeddingStore(job); err != nil {
		return nil, err
	}
	if err := buildInference(job); err != nil {
		return nil, err
	}
	return job, nil
}

func buildLabels(job *Job) error {
	source := LabelSource(viper.GetString(labelsSource))
	job.Labels.Source = source
	switch source {
	case LabelSourceFile:
		if !viper.IsSet(labelsFilePath) {
			return errors.New(labelsFilePath + " not set")
		}
		job.Labels.FilePath = viper.GetString(labelsFilePath)
	case LabelSourceEtcd:
		if !viper.IsSet(labelsEtcdEndpoint) {
			return errors.New(labelsEtcdEndpoint + " not set")
		}
		if !viper.IsSet(labelsEtcdKey) {
			return errors.New(labelsEtcdKey + " not set")
		}
		job.Labels.EtcdEndpoints = splitCSV(viper.GetString(labelsEtcdEndpoint))
		job.Labels.EtcdKey = viper.GetString(labelsEtcdKey)
		job.Labels.EtcdTimeoutMs = viper.GetInt(labelsEtcdTimeout)
		job.Labels.EtcdUsername = viper.GetString(labelsEtcdUsername)
		job.Labels.EtcdPassword = viper.GetString(labelsEtcdPassword)
	default:
		return errors.New(labelsSource + " has unknown value " + string(source))
	}
	return nil
}

func buildEmbeddingStore(job *Job) error {
	st := StoreType(viper.GetString(storeType))
	job.EmbeddingStore.Type = st
	switch st {
	case StoreTypeFS:
		job.EmbeddingStore.FSRoot = viper.GetString(storeFSRoot)
	case StoreTypeGCS:
		if !viper.IsSet(storeGCSBucket) {
			return errors.New(storeGCSBucket + " not set")
		}
		if !viper.IsSet(storeGCSCreds) {
			return errors.New(storeGCSCreds + " not set")
		}
		job.EmbeddingStore.GCSBucket = viper.GetString(storeGCSBucket)
		job.EmbeddingStore.GCSPrefix = viper.GetString(storeGCSPrefix)
		job.EmbeddingStore.GCSCredentialsJSON = viper.GetString(storeGCSCreds)
	case StoreTypeS3:
		if !viper.IsSet(storeS3Bucket) {
			return errors.New(storeS3Bucket + " not set")
		}
		if !viper.IsSet(storeS3Region) {
			return errors.New(storeS3Region + " not set")
		}
		if !viper.IsSet(storeS3AccessKey) {
			return errors.New(storeS3AccessKey + " not set")
		}
		if !viper.IsSet(storeS3SecretKey) {
			return errors.New(storeS3SecretKey + " not set")
		}
		job.EmbeddingStore.S3Bucket = viper.GetString(storeS3Bucket)
		job.EmbeddingStore.S3Prefix = viper.GetString(storeS3Prefix)
		job.EmbeddingStore.S3Region = viper.GetString(storeS3Region)
		job.EmbeddingStore.S3Endpoint = viper.GetString(storeS3Endpoint)
		job.EmbeddingStore.S3AccessKeyID = viper.GetString(storeS3AccessKey)
		job.EmbeddingStore.S3SecretAccessKey = viper.GetString(storeS3SecretKey)
	case StoreTypeScylla:
		if !viper.IsSet(storeScyllaConfID) {
			return errors.New(storeScyllaConfID + " not set")
		}
		if !viper.IsSet(storeScyllaTable) {
			return errors.New(storeScyllaTable + " not set")
		}
		job.EmbeddingStore.ScyllaConfigID = viper.GetInt(storeScyllaConfID)
		job.EmbeddingStore.ScyllaTable = viper.GetString(storeScyllaTable)
	case StoreTypeRedis:
		if !viper.IsSet(storeRedisConfID) {
			return errors.New(storeRedisConfID + " not set")
		}
		job.EmbeddingStore.RedisConfigID = viper.GetInt(storeRedisConfID)
		job.EmbeddingStore.RedisKeyPrefix = viper.GetString(storeRedisPrefix)
	default:
		return errors.New(storeType + " has unknown value " + string(st))
	}

	dtype, err := enums.ParseDataType(viper.GetString(storeValueDType))
	if err != nil {
		return err
	}
	job.EmbeddingStore.ValueDType = dtype

	ctype, err := compression.ParseType(viper.GetString(storeCompression))
	if err != nil {
		return err
	}
	job.EmbeddingStore.Compression = ctype
	return nil
}

func buildInference(job *Job) error {
	if !viper.IsSet(inferHost) {
		return errors.New(inferHost + " not set")
	}
	if !viper.IsSet(inferPort) {
		return errors.New(inferPort + " not set")
	}
	if !viper.IsSet(inferModelName) {
		return errors.New(inferModelName + " not set")
	}
	job.Inference = Inference{
		Host:           viper.GetString(inferHost),
		Port:           viper.GetString(inferPort),
		ModelName:      viper.GetString(inferModelName),
		ModelVersion:   viper.GetString(inferModelVersion),
		DeadlineMs:     viper.GetInt(inferDeadline),
		PlainText:      viper.GetBool(inferPlainText),
		CallerID:       viper.GetString(inferCallerID),
		AuthToken:      viper.GetString(inferAuthToken),
		OutputName:     viper.GetString(inferOutputName),
		InputOfferable: viper.GetString(inferInputOfferable),
		InputCreatedAt: viper.GetString(inferInputCreatedAt),
		CacheEnabled:   viper.GetBool(inferCacheEnabled),
		CacheSizeMB:    viper.GetInt(inferCacheSize),
		CacheTTLSec:    viper.GetInt(inferCacheTTL),
	}
	return nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
