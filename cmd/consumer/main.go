package main

import (
	"context"
	http2 "net/http"
	_ "net/http/pprof"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	trainsetConfig "github.com/Meesho/BharatMLStack/trainset-builder/internal/config"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/consumer/listeners"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/data/repositories/embeddings"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/handler/row"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/inference"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/labels"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/server/http"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/system"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/telemetry"
	"github.com/Meesho/BharatMLStack/trainset-builder/pkg/config"
	"github.com/Meesho/BharatMLStack/trainset-builder/pkg/infra"
	"github.com/Meesho/BharatMLStack/trainset-builder/pkg/logger"
	"github.com/Meesho/BharatMLStack/trainset-builder/pkg/metric"
)

func main() {
	config.InitEnv()
	go func() {
		http2.ListenAndServe(":8080", nil)
	}()
	logger.Init()
	metric.Init()
	system.Init()
	trainsetConfig.Init()
	infra.InitDBConnectors()

	jobConfig := trainsetConfig.Instance()
	fs := afero.NewOsFs()
	ctx := context.Background()

	dict, err := labels.Load(ctx, fs, jobConfig.Labels)
	if err != nil {
		log.Panic().Err(err).Msg("Failed to load label dictionary")
	}
	store, err := embeddings.NewStore(ctx, jobConfig.EmbeddingStore)
	if err != nil {
		log.Panic().Err(err).Msg("Failed to build embedding store")
	}
	infer := inference.InitClient(inference.Version1, &jobConfig.Inference)

	counters := telemetry.NewCounters(jobConfig.Schema.LabelCounterCapacity)
	resolver := labels.NewResolver(dict, counters)
	adapter, err := embeddings.NewAdapter(store, jobConfig.EmbeddingStore, jobConfig.Schema.BottleneckSize, counters)
	if err != nil {
		log.Panic().Err(err).Msg("Failed to build embedding adapter")
	}
	processor := row.NewProcessor(jobConfig.Schema, resolver, adapter, infer, counters)

	http.Init(counters, dict)
	kafkaListener := listeners.NewKafkaListener(fs, processor, counters)
	kafkaListener.Init()
	kafkaListener.Consume()
	if err := http.Instance().Run(":" + viper.GetString("APP_PORT")); err != nil {
		log.Panic().Err(err).Msg("Error from running trainset-builder consumer")
	}
}
