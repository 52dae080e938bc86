package infra

import (
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	storageRedisClusterPrefix  = "STORAGE_REDIS_CLUSTER_"
	redisClusterAddrsEnvSuffix = "_ADDRESSES"
)

// BuildRedisClusterOptionsFromEnv constructs Redis Cluster options from
// environment variables with the specified prefix.
//
// Mandatory environment variables:
//   - <envPrefix>_ADDRESSES: Comma-separated list of cluster node addresses (host:port)
//   - <envPrefix>_READ_TIMEOUT_IN_MS: Read timeout duration (milliseconds)
//   - <envPrefix>_WRITE_TIMEOUT_IN_MS: Write timeout duration (milliseconds)
//
// The optional keys match the standalone builder and map one to one onto
// redis.ClusterOptions fields.
func BuildRedisClusterOptionsFromEnv(envPrefix string) (*redis.ClusterOptions, error) {
	log.Debug().Msgf("building redis cluster options from env, env prefix - %s", envPrefix)

	for _, suffix := range []string{redisClusterAddrsEnvSuffix, redisReadTimeoutEnvSuffix, redisWriteTimeoutEnvSuffix} {
		if !viper.IsSet(envPrefix + suffix) {
			return nil, errors.New(envPrefix + suffix + " not set")
		}
	}

	addresses := strings.Split(viper.GetString(envPrefix+redisClusterAddrsEnvSuffix), ",")
	for i := range addresses {
		addresses[i] = strings.TrimSpace(addresses[i])
	}

	clusterOptions := redis.ClusterOptions{
		Addrs:        addresses,
		ReadTimeout:  time.Duration(viper.GetInt(envPrefix+redisReadTimeoutEnvSuffix)) * time.Millisecond,
		WriteTimeout: time.Duration(viper.GetInt(envPrefix+redisWriteTimeoutEnvSuffix)) * time.Millisecond,
	}

	if viper.IsSet(envPrefix + redisUsernameEnvSuffix) {
		clusterOptions.Username = viper.GetString(envPrefix + redisUsernameEnvSuffix)
	}
	if viper.IsSet(envPrefix + redisPasswordEnvSuffix) {
		clusterOptions.Password = viper.GetString(envPrefix + redisPasswordEnvSuffix)
	}
	if viper.IsSet(envPrefix + redisMaxRetryEnvSuffix) {
		clusterOptions.MaxRetries = viper.GetInt(envPrefix + redisMaxRetryEnvSuffix)
	}
	if viper.IsSet(envPrefix + redisMinRetryBackoffEnvSuffix) {
		clusterOptions.MinRetryBackoff = time.Duration(viper.GetInt(envPrefix+redisMinRetryBackoffEnvSuffix)) * time.Millisecond
	}
	if viper.IsSet(envPrefix + redisMaxRetryBackoffEnvSuffix) {
		clusterOptions.MaxRetryBackoff = time.Duration(viper.GetInt(envPrefix+redisMaxRetryBackoffEnvSuffix)) * time.Millisecond
	}
	if viper.IsSet(envPrefix + redisDialTimeoutEnvSuffix) {
		clusterOptions.DialTimeout = time.Duration(viper.GetInt(envPrefix+redisDialTimeoutEnvSuffix)) * time.Millisecond
	}
	if viper.IsSet(envPrefix + redisPoolFifoEnvSuffix) {
		clusterOptions.PoolFIFO = viper.GetBool(envPrefix + redisPoolFifoEnvSuffix)
	}
	if viper.IsSet(envPrefix + redisPoolSizeEnvSuffix) {
		clusterOptions.PoolSize = viper.GetInt(envPrefix + redisPoolSizeEnvSuffix)
	}
	if viper.IsSet(envPrefix + redisMinIdleEnvSuffix) {
		clusterOptions.MinIdleConns = viper.GetInt(envPrefix + redisMinIdleEnvSuffix)
	}
	if viper.IsSet(envPrefix + redisMaxIdleEnvSuffix) {
		clusterOptions.MaxIdleConns = viper.GetInt(envPrefix + redisMaxIdleEnvSuffix)
	}
	if viper.IsSet(envPrefix + redisMaxActiveEnvSuffix) {
		clusterOptions.MaxActiveConns = viper.GetInt(envPrefix + redisMaxActiveEnvSuffix)
	}
	if viper.IsSet(envPrefix + redisMaxConnAgeEnvSuffix) {
		clusterOptions.ConnMaxLifetime = time.Duration(viper.GetInt(envPrefix+redisMaxConnAgeEnvSuffix)) * time.Minute
	}
	if viper.IsSet(envPrefix + redisPoolTimeoutEnvSuffix) {
		clusterOptions.PoolTimeout = time.Duration(viper.GetInt(envPrefix+redisPoolTimeoutEnvSuffix)) * time.Millisecond
	}
	if viper.IsSet(envPrefix + redisMaxConnIdleTimeoutEnvSuffix) {
		clusterOptions.ConnMaxIdleTime = time.Duration(viper.GetInt(envPrefix+redisMaxConnIdleTimeoutEnvSuffix)) * time.Minute
	}
	if viper.IsSet(envPrefix + redisDisableIdentityEnvSuffix) {
		clusterOptions.DisableIndentity = viper.GetBool(envPrefix + redisDisableIdentityEnvSuffix)
	}

	log.Info().Msgf("redis cluster options built from env, env prefix - %s", envPrefix)

	return &clusterOptions, nil
}
