// Package http exposes the job's observability surface: health, the live
// counter snapshot, and the loaded label dictionary.
package http

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/Meesho/BharatMLStack/trainset-builder/internal/labels"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/telemetry"
)

var (
	router *gin.Engine
	once   sync.Once
)

func Init(counters *telemetry.Counters, dict *labels.Dictionary) {
	once.Do(func() {
		env := viper.GetString("APP_ENV")
		if env == "prod" || env == "production" {
			gin.SetMode(gin.ReleaseMode)
		}
		router = gin.New()

		router.Use(gin.Recovery())
		router.Use(gin.Logger())
		router.Use(AuthMiddleware())

		router.GET("/health/self", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "true"})
		})

		RegisterRoutes(router, counters, dict)
	})
}

func Instance() *gin.Engine {
	if router == nil {
		log.Fatal().Msg("Router not initialized")
	}
	return router
}
