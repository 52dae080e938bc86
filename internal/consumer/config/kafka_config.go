// Package config resolves Kafka consumer settings from the environment.
// Every key is read under a listener-specific prefix so several listeners
// can run side by side with independent settings.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

const (
	keyTopic                = "_TOPIC"
	keyBootstrapServers     = "_BOOTSTRAP_SERVERS"
	keySaslUsername         = "_SASL_USERNAME"
	keySaslPassword         = "_SASL_PASSWORD"
	keySaslMechanism        = "_SASL_MECHANISM"
	keySecurityProtocol     = "_SECURITY_PROTOCOL"
	keyGroupID              = "_GROUP_ID"
	keyClientID             = "_CLIENT_ID"
	keyAutoOffsetReset      = "_AUTO_OFFSET_RESET"
	keyAutoCommitEnable     = "_ENABLE_AUTO_COMMIT"
	keyAutoCommitIntervalMs = "_AUTO_COMMIT_INTERVAL_MS"
	keyReBalanceEnable      = "_RE_BALANCE_ENABLE"
	keyConcurrency          = "_LISTENER_CONCURRENCY"
	keyBatchSize            = "_BATCH_SIZE"
	keyPollTimeout          = "_POLL_TIMEOUT"
)

// KafkaConfig carries everything one listener needs to build its consumers.
// SASL fields stay empty for plaintext clusters.
type KafkaConfig struct {
	BootstrapURLs          string
	SaslUsername           string
	SaslPassword           string
	SaslMechanism          string
	SecurityProtocol       string
	GroupID                string
	ClientID               string
	Topic                  string
	AutoOffsetReset        string
	AutoCommitIntervalInMs int
	AutoCommitEnable       bool
	ReBalanceEnable        bool
	Concurrency            int
	BatchSize              int
	PollTimeout            int
}

type KafkaConfigGenerator interface {
	BuildConfigFromEnv(envPrefix string) (*KafkaConfig, error)
}

type KafkaConfigGeneratorV1 struct{}

func NewKafkaConfig() KafkaConfigGenerator {
	return &KafkaConfigGeneratorV1{}
}

func (k *KafkaConfigGeneratorV1) BuildConfigFromEnv(envPrefix string) (*KafkaConfig, error) {
	required := []string{
		keyTopic,
		keyBootstrapServers,
		keyGroupID,
		keyClientID,
		keyAutoOffsetReset,
		keyAutoCommitIntervalMs,
		keyConcurrency,
		keyBatchSize,
		keyPollTimeout,
	}
	for _, key := range required {
		if !viper.IsSet(envPrefix + key) {
			return nil, fmt.Errorf("%s%s not set", envPrefix, key)
		}
	}

	cfg := &KafkaConfig{
		Topic:                  viper.GetString(envPrefix + keyTopic),
		BootstrapURLs:          viper.GetString(envPrefix + keyBootstrapServers),
		SaslUsername:           viper.GetString(envPrefix + keySaslUsername),
		SaslPassword:           viper.GetString(envPrefix + keySaslPassword),
		SaslMechanism:          viper.GetString(envPrefix + keySaslMechanism),
		SecurityProtocol:       viper.GetString(envPrefix + keySecurityProtocol),
		GroupID:                viper.GetString(envPrefix + keyGroupID),
		ClientID:               viper.GetString(envPrefix + keyClientID),
		AutoOffsetReset:        viper.GetString(envPrefix + keyAutoOffsetReset),
		AutoCommitIntervalInMs: viper.GetInt(envPrefix + keyAutoCommitIntervalMs),
		AutoCommitEnable:       viper.GetBool(envPrefix + keyAutoCommitEnable),
		ReBalanceEnable:        viper.GetBool(envPrefix + keyReBalanceEnable),
		Concurrency:            viper.GetInt(envPrefix + keyConcurrency),
		BatchSize:              viper.GetInt(envPrefix + keyBatchSize),
		PollTimeout:            viper.GetInt(envPrefix + keyPollTimeout),
	}
	if cfg.Concurrency < 1 {
		return nil, fmt.Errorf("%s%s must be at least 1", envPrefix, keyConcurrency)
	}
	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("%s%s must be at least 1", envPrefix, keyBatchSize)
	}
	return cfg, nil
}
