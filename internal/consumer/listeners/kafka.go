// Package listeners consumes catalog row events from Kafka and appends
// the resulting feature records to output shards. Each consumer instance
// owns one shard; message order within a partition is preserved but no
// cross-partition ordering is guaranteed, which the record format never
// requires.
package listeners

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/Meesho/BharatMLStack/trainset-builder/internal/config"
	kafkaConf "github.com/Meesho/BharatMLStack/trainset-builder/internal/consumer/config"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/data/tfexample"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/data/tfrecord"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/handler/row"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/telemetry"
	"github.com/Meesho/BharatMLStack/trainset-builder/pkg/metric"
)

const (
	envPrefix            = "KAFKA_CONSUMERS_ROW_CONSUMER"
	bootstrapServers     = "bootstrap.servers"
	groupID              = "group.id"
	autoOffsetReset      = "auto.offset.reset"
	reBalanceEnable      = "go.application.rebalance.enable"
	enableAutoCommit     = "enable.auto.commit"
	autoCommitIntervalMs = "auto.commit.interval.ms"
	saslUsername         = "sasl.username"
	saslPassword         = "sasl.password"
	saslMechanism        = "sasl.mechanisms"
	securityProtocol     = "security.protocol"
	clientId             = "client.id"

	shardBaseName = "trainset-stream"
)

var (
	once          sync.Once
	kafkaListener *KafkaListener
)

type KafkaListener struct {
	fs                   afero.Fs
	processor            *row.Processor
	counters             *telemetry.Counters
	kafkaConfigGenerator kafkaConf.KafkaConfigGenerator
	consumers            []*kafka.Consumer
	writers              []*tfrecord.ShardWriter
	writerMu             []sync.Mutex
	kafkaConfig          *kafkaConf.KafkaConfig
	sigChan              chan os.Signal
	// stop is closed exactly once by the signal watcher so every consumer
	// goroutine observes shutdown, not just the first one to wake up.
	stop chan struct{}
}

func NewKafkaListener(fs afero.Fs, processor *row.Processor, counters *telemetry.Counters) *KafkaListener {
	once.Do(func() {
		kafkaConfigGenerator := kafkaConf.NewKafkaConfig()
		kafkaConfig, err := kafkaConfigGenerator.BuildConfigFromEnv(envPrefix)
		if err != nil {
			log.Panic().Err(err).Msg("Failed to build kafka config")
		}

		kafkaListener = &KafkaListener{
			fs:                   fs,
			processor:            processor,
			counters:             counters,
			kafkaConfigGenerator: kafkaConfigGenerator,
			kafkaConfig:          kafkaConfig,
		}
	})
	return kafkaListener
}

func (k *KafkaListener) Init() {
	output := config.Instance().Output
	for i := 0; i < k.kafkaConfig.Concurrency; i++ {
		indexString := strconv.Itoa(i)
		consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
			bootstrapServers:     k.kafkaConfig.BootstrapURLs,
			groupID:              k.kafkaConfig.GroupID,
			autoOffsetReset:      k.kafkaConfig.AutoOffsetReset,
			reBalanceEnable:      k.kafkaConfig.ReBalanceEnable,
			enableAutoCommit:     k.kafkaConfig.AutoCommitEnable,
			autoCommitIntervalMs: k.kafkaConfig.AutoCommitIntervalInMs,
			saslUsername:         k.kafkaConfig.SaslUsername,
			saslPassword:         k.kafkaConfig.SaslPassword,
			securityProtocol:     k.kafkaConfig.SecurityProtocol,
			saslMechanism:        k.kafkaConfig.SaslMechanism,
			clientId:             k.kafkaConfig.ClientID + "-" + indexString,
		})
		if err != nil {
			log.Panic().Err(err).Msg("Failed to create Kafka consumer.")
		}
		err = consumer.SubscribeTopics([]string{k.kafkaConfig.Topic}, nil)
		if err != nil {
			log.Panic().Err(err).Msgf("Failed to subscribe to topic %s", k.kafkaConfig.Topic)
		}
		k.consumers = append(k.consumers, consumer)

		writer, err := tfrecord.NewShardWriter(k.fs, filepath.Join(output.Path, shardBaseName), i, k.kafkaConfig.Concurrency, output.GzipLevel)
		if err != nil {
			log.Panic().Err(err).Msg("Failed to open output shard")
		}
		k.writers = append(k.writers, writer)
	}
	k.writerMu = make([]sync.Mutex, len(k.writers))
	k.stop = make(chan struct{})
	k.sigChan = make(chan os.Signal, 1)
	signal.Notify(k.sigChan, syscall.SIGINT, syscall.SIGTERM)
}

func (k *KafkaListener) Consume() {
	go func() {
		sig := <-k.sigChan
		log.Info().Msgf("Received signal %v, stopping row consumers", sig)
		close(k.stop)
	}()

	var wg sync.WaitGroup
	for i, c := range k.consumers {
		log.Info().Msgf("Starting consumption of row events %v", i)
		wg.Add(1)
		go func(idx int, c *kafka.Consumer) {
			defer wg.Done()
			defer func() {
				if err := k.writers[idx].Close(); err != nil {
					log.Error().Err(err).Msg("Error while closing output shard")
				}
			}()
			defer func() {
				if r := recover(); r != nil {
					log.Error().Msgf("%v : Recovered from panic: %v", c, r)
					partitions, _ := c.Assignment()
					_, err := c.SeekPartitions(partitions)
					if err != nil {
						log.Error().Msgf("%v : Failed to seek partitions", c)
					}
					metric.Incr("consumer_panic", []string{"group:" + k.kafkaConfig.GroupID, "client:" + k.kafkaConfig.ClientID})
				}
			}()
			run := true

			// Partition-wise message storage
			partitionMessages := make(map[int32][]*kafka.Message)
			partitionCounts := make(map[int32]int)
			flushTimer := time.NewTicker(30 * time.Second)

			for run {
				select {
				case <-k.stop:
					log.Info().Msgf("Terminating Instance %v", c)

					// Process remaining messages from all partitions before shutdown
					for partition, messages := range partitionMessages {
						if len(messages) > 0 {
							log.Info().Msgf("Processing remaining %d messages from partition %d before shutdown", len(messages), partition)
							k.process(idx, c, messages)
						}
					}

					if err := c.Unsubscribe(); err != nil {
						log.Error().Msg("Error while UnSubscribing Topic")
					}
					if err := c.Close(); err != nil {
						log.Error().Msg("Error while Closing Consumer")
					}
					run = false

				case <-flushTimer.C:
					for partition, messages := range partitionMessages {
						if len(messages) > 0 {
							log.Info().Msgf("Processing %d messages from partition %d due to timeout", len(messages), partition)
							k.process(idx, c, messages)
							partitionMessages[partition] = partitionMessages[partition][:0]
							partitionCounts[partition] = 0
						}
					}

				default:
					ev := c.Poll(k.kafkaConfig.PollTimeout)
					if ev == nil {
						continue
					}
					switch e := ev.(type) {
					case *kafka.Message:
						metric.Incr("events_consumed", []string{
							"topic:" + *e.TopicPartition.Topic,
							"group:" + k.kafkaConfig.GroupID,
							"client:" + k.kafkaConfig.ClientID,
						})

						partition := e.TopicPartition.Partition
						if _, exists := partitionMessages[partition]; !exists {
							partitionMessages[partition] = make([]*kafka.Message, 0, k.kafkaConfig.BatchSize)
							partitionCounts[partition] = 0
						}
						partitionMessages[partition] = append(partitionMessages[partition], e)
						partitionCounts[partition]++

						// Process batch if this partition reaches batch size
						if partitionCounts[partition] == k.kafkaConfig.BatchSize {
							log.Info().Msgf("Processing batch of %d messages from partition %d", partitionCounts[partition], partition)
							k.process(idx, c, partitionMessages[partition])
							partitionMessages[partition] = partitionMessages[partition][:0]
							partitionCounts[partition] = 0
						}

					case kafka.Error:
						if e.IsFatal() {
							log.Error().Err(e).Msg("Fatal Kafka error. Shutting down consumer.")

							for partition, messages := range partitionMessages {
								if len(messages) > 0 {
									log.Info().Msgf("Processing remaining %d messages from partition %d before fatal error", len(messages), partition)
									k.process(idx, c, messages)
								}
							}

							run = false
						} else {
							log.Error().Err(e).Msg("Non-fatal Kafka error encountered.")
						}

					default:
						log.Debug().Msgf("Ignored event: %#v", e)
					}
				}
			}
		}(i, c)
	}

	go func() {
		wg.Wait()
		k.counters.Flush()
	}()
}

// process runs a batch of row events through the pipeline. Invalid rows
// are dropped and counted; an external failure leaves the batch
// uncommitted so it is retried from its first offset.
func (k *KafkaListener) process(idx int, consumer *kafka.Consumer, messages []*kafka.Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("Panic occurred in method %s: %v\n", r, debug.Stack())
		}
	}()
	startOffset := messages[0].TopicPartition.Offset
	topic := messages[0].TopicPartition.Topic
	partition := messages[0].TopicPartition.Partition
	isFailed := false

	k.writerMu[idx].Lock()
	defer k.writerMu[idx].Unlock()

	for _, msg := range messages {
		record, err := k.processor.Process(context.Background(), string(msg.Value))
		if err != nil {
			var invalid *row.InvalidRowError
			if !errors.As(err, &invalid) {
				isFailed = true
			}
			log.Error().Err(err).Msg("Failed to process row event")
			k.publishMetrics(msg, false)
			continue
		}
		if record == nil {
			k.publishMetrics(msg, true)
			continue
		}
		err = k.writers[idx].Write(record.Serialize())
		tfexample.GetRecordPool().Put(record)
		if err != nil {
			isFailed = true
			log.Error().Err(err).Msg("Failed to append record to shard")
			k.publishMetrics(msg, false)
			continue
		}
		k.publishMetrics(msg, true)
	}

	if !k.kafkaConfig.AutoCommitEnable {
		if !isFailed {
			if _, err := consumer.Commit(); err != nil {
				log.Error().Err(err).Msg("Failed to commit messages")
			}
		} else {
			// Seek back to the start of the failed batch. Records appended
			// before the failing message are written again on the retry, so
			// shards are at-least-once: downstream readers dedupe by id.
			seekPartitions := []kafka.TopicPartition{
				{
					Topic:     topic,
					Partition: partition,
					Offset:    kafka.Offset(startOffset),
				},
			}
			if _, err := consumer.SeekPartitions(seekPartitions); err != nil {
				log.Error().Msgf("%v : Failed to seek partitions", consumer)
			}
		}
	}
}

func (k *KafkaListener) publishMetrics(msg *kafka.Message, success bool) {
	successStr := "false"
	if success {
		successStr = "true"
	}
	metric.Count("row_event_processed", 1, []string{
		"success:" + successStr,
		"topic:" + *msg.TopicPartition.Topic,
	})
}
