package main

import (
	"context"
	http2 "net/http"
	_ "net/http/pprof"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	trainsetConfig "github.com/Meesho/BharatMLStack/trainset-builder/internal/config"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/data/repositories/embeddings"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/handler/job"
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
	http.Init(counters, dict)
	go func() {
		if err := http.Instance().Run(":" + viper.GetString("APP_PORT")); err != nil {
			log.Error().Err(err).Msg("Inspection server stopped")
		}
	}()

	factory := func(workerCounters *telemetry.Counters) (*row.Processor, error) {
		resolver := labels.NewResolver(dict, workerCounters)
		adapter, err := embeddings.NewAdapter(store, jobConfig.EmbeddingStore, jobConfig.Schema.BottleneckSize, workerCounters)
		if err != nil {
			return nil, err
		}
		return row.NewProcessor(jobConfig.Schema, resolver, adapter, infer, workerCounters), nil
	}

	runner := job.NewRunner(fs, jobConfig, factory)
	if err := runner.Run(ctx, counters); err != nil {
		log.Fatal().Err(err).Msg("Trainset build failed")
	}
	log.Info().Interface("counters", counters.Snapshot()).Msg("Trainset build complete")
}
