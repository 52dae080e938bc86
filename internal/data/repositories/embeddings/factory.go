package embeddings

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"github.com/Meesho/BharatMLStack/trainset-builder/internal/config"
	"github.com/Meesho/BharatMLStack/trainset-builder/pkg/infra"
)

// NewStore builds the configured embedding store backend. Scylla and Redis
// backends resolve their connections from infra, which must be initialized
// first.
func NewStore(ctx context.Context, cfg config.EmbeddingStore) (Store, error) {
	switch cfg.Type {
	case config.StoreTypeFS:
		return NewFileStore(afero.NewOsFs(), cfg.FSRoot), nil
	case config.StoreTypeGCS:
		return NewGCSStore(ctx, cfg.GCSCredentialsJSON, cfg.GCSBucket, cfg.GCSPrefix)
	case config.StoreTypeS3:
		return NewS3Store(ctx, S3Params{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	case config.StoreTypeScylla:
		if infra.Scylla == nil {
			return nil, fmt.Errorf("scylla connectors not initialized")
		}
		connFacade, err := infra.Scylla.GetConnection(cfg.ScyllaConfigID)
		if err != nil {
			return nil, err
		}
		conn, ok := connFacade.(*infra.ScyllaClusterConnection)
		if !ok {
			return nil, fmt.Errorf("config id %d is not a scylla connection", cfg.ScyllaConfigID)
		}
		return NewScyllaStore(conn, cfg.ScyllaTable)
	case config.StoreTypeRedis:
		client, err := redisClient(cfg.RedisConfigID)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.RedisKeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown embedding store type %q", cfg.Type)
	}
}

func redisClient(configID int) (redis.UniversalClient, error) {
	var connFacade infra.ConnectionFacade
	var err error
	switch infra.ConfIdDBTypeMap[configID] {
	case infra.DBTypeRedisStandalone:
		connFacade, err = infra.RedisStandalone.GetConnection(configID)
	case infra.DBTypeRedisCluster:
		connFacade, err = infra.RedisCluster.GetConnection(configID)
	default:
		return nil, fmt.Errorf("config id %d is not a redis connection", configID)
	}
	if err != nil {
		return nil, err
	}
	conn, err := connFacade.GetConn()
	if err != nil {
		return nil, err
	}
	client, ok := conn.(redis.UniversalClient)
	if !ok {
		return nil, fmt.Errorf("config id %d holds no redis client", configID)
	}
	return client, nil
}
