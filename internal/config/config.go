package config

import (
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	instance *Job
	once     sync.Once
)

// Init builds the job configuration from the environment. Call after
// config.InitEnv and logger.Init.
func Init() {
	once.Do(func() {
		job, err := BuildJobFromEnv()
		if err != nil {
			log.Panic().Err(err).Msg("Failed to build job config")
		}
		instance = job
	})
}

func Instance() *Job {
	if instance == nil {
		log.Fatal().Msg("Config not initialized, call Init first")
	}
	return instance
}
