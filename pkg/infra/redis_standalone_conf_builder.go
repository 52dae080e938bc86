package infra

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	storageRedisStandalonePrefix     = "STORAGE_REDIS_STANDALONE_"
	redisNetworkEnvSuffix            = "_NETWORK"
	redisAddrEnvSuffix               = "_ADDR"
	redisUsernameEnvSuffix           = "_USERNAME"
	redisPasswordEnvSuffix           = "_PASSWORD"
	redisDbEnvSuffix                 = "_DB"
	redisMaxRetryEnvSuffix           = "_MAX_RETRY"
	redisMinRetryBackoffEnvSuffix    = "_MIN_RETRY_BACKOFF_IN_MS"
	redisMaxRetryBackoffEnvSuffix    = "_MAX_RETRY_BACKOFF_IN_MS"
	redisDialTimeoutEnvSuffix        = "_DIAL_TIMEOUT_IN_MS"
	redisReadTimeoutEnvSuffix        = "_READ_TIMEOUT_IN_MS"
	redisWriteTimeoutEnvSuffix       = "_WRITE_TIMEOUT_IN_MS"
	redisPoolFifoEnvSuffix           = "_POOL_FIFO"
	redisPoolSizeEnvSuffix           = "_POOL_SIZE"
	redisMinIdleEnvSuffix            = "_MIN_IDLE_CONN"
	redisMaxIdleEnvSuffix            = "_MAX_IDLE_CONN"
	redisMaxActiveEnvSuffix          = "_MAX_ACTIVE_CONN"
	redisMaxConnAgeEnvSuffix         = "_CONN_MAX_AGE_IN_MINUTES"
	redisPoolTimeoutEnvSuffix        = "_POOL_TIMEOUT_IN_MS"
	redisMaxConnIdleTimeoutEnvSuffix = "_CONN_MAX_IDLE_TIMEOUT_IN_MINUTES"
	redisDisableIdentityEnvSuffix    = "_DISABLE_IDENTITY"
)

// BuildRedisOptionsFromEnv constructs standalone Redis options from
// environment variables with the specified prefix.
//
// Mandatory environment variables:
//   - <envPrefix>_ADDR: Redis server address (host:port)
//   - <envPrefix>_DB: Redis database index
//   - <envPrefix>_READ_TIMEOUT_IN_MS: Read timeout duration (milliseconds)
//   - <envPrefix>_WRITE_TIMEOUT_IN_MS: Write timeout duration (milliseconds)
//
// The remaining connection-pool and retry keys are optional and map one to
// one onto redis.Options fields.
func BuildRedisOptionsFromEnv(envPrefix string) (*redis.Options, error) {

	log.Debug().Msgf("building redis standalone config from env, env prefix - %s", envPrefix)

	for _, suffix := range []string{redisAddrEnvSuffix, redisDbEnvSuffix, redisReadTimeoutEnvSuffix, redisWriteTimeoutEnvSuffix} {
		if !viper.IsSet(envPrefix + suffix) {
			return nil, errors.New(envPrefix + suffix + " not set")
		}
	}

	redisOptions := redis.Options{
		Addr:         viper.GetString(envPrefix + redisAddrEnvSuffix),
		DB:           viper.GetInt(envPrefix + redisDbEnvSuffix),
		ReadTimeout:  time.Duration(viper.GetInt(envPrefix+redisReadTimeoutEnvSuffix)) * time.Millisecond,
		WriteTimeout: time.Duration(viper.GetInt(envPrefix+redisWriteTimeoutEnvSuffix)) * time.Millisecond,
	}

	if viper.IsSet(envPrefix + redisNetworkEnvSuffix) {
		redisOptions.Network = viper.GetString(envPrefix + redisNetworkEnvSuffix)
	}
	if viper.IsSet(envPrefix + redisUsernameEnvSuffix) {
		redisOptions.Username = viper.GetString(envPrefix + redisUsernameEnvSuffix)
	}
	if viper.IsSet(envPrefix + redisPasswordEnvSuffix) {
		redisOptions.Password = viper.GetString(envPrefix + redisPasswordEnvSuffix)
	}
	if viper.IsSet(envPrefix + redisMaxRetryEnvSuffix) {
		redisOptions.MaxRetries = viper.GetInt(envPrefix + redisMaxRetryEnvSuffix)
	}
	if viper.IsSet(envPrefix + redisMinRetryBackoffEnvSuffix) {
		redisOptions.MinRetryBackoff = time.Duration(viper.GetInt(envPrefix+redisMinRetryBackoffEnvSuffix)) * time.Millisecond
	}
	if viper.IsSet(envPrefix + redisMaxRetryBackoffEnvSuffix) {
		redisOptions.MaxRetryBackoff = time.Duration(viper.GetInt(envPrefix+redisMaxRetryBackoffEnvSuffix)) * time.Millisecond
	}
	if viper.IsSet(envPrefix + redisDialTimeoutEnvSuffix) {
		redisOptions.DialTimeout = time.Duration(viper.GetInt(envPrefix+redisDialTimeoutEnvSuffix)) * time.Millisecond
	}
	if viper.IsSet(envPrefix + redisPoolFifoEnvSuffix) {
		redisOptions.PoolFIFO = viper.GetBool(envPrefix + redisPoolFifoEnvSuffix)
	}
	if viper.IsSet(envPrefix + redisPoolSizeEnvSuffix) {
		redisOptions.PoolSize = viper.GetInt(envPrefix + redisPoolSizeEnvSuffix)
	}
	if viper.IsSet(envPrefix + redisMinIdleEnvSuffix) {
		redisOptions.MinIdleConns = viper.GetInt(envPrefix + redisMinIdleEnvSuffix)
	}
	if viper.IsSet(envPrefix + redisMaxIdleEnvSuffix) {
		redisOptions.MaxIdleConns = viper.GetInt(envPrefix + redisMaxIdleEnvSuffix)
	}
	if viper.IsSet(envPrefix + redisMaxActiveEnvSuffix) {
		redisOptions.MaxActiveConns = viper.GetInt(envPrefix + redisMaxActiveEnvSuffix)
	}
	if viper.IsSet(envPrefix + redisMaxConnAgeEnvSuffix) {
		redisOptions.ConnMaxLifetime = time.Duration(viper.GetInt(envPrefix+redisMaxConnAgeEnvSuffix)) * time.Minute
	}
	if viper.IsSet(envPrefix + redisPoolTimeoutEnvSuffix) {
		redisOptions.PoolTimeout = time.Duration(viper.GetInt(envPrefix+redisPoolTimeoutEnvSuffix)) * time.Millisecond
	}
	if viper.IsSet(envPrefix + redisMaxConnIdleTimeoutEnvSuffix) {
		redisOptions.ConnMaxIdleTime = time.Duration(viper.GetInt(envPrefix+redisMaxConnIdleTimeoutEnvSuffix)) * time.Minute
	}
	if viper.IsSet(envPrefix + redisDisableIdentityEnvSuffix) {
		redisOptions.DisableIndentity = viper.GetBool(envPrefix + redisDisableIdentityEnvSuffix)
	}
	log.Info().Msgf("redis options built from env, env prefix - %s", envPrefix)
	return &redisOptions, nil
}
