package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Meesho/BharatMLStack/trainset-builder/internal/labels"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/telemetry"
)

// RegisterRoutes registers the inspection API.
func RegisterRoutes(router *gin.Engine, counters *telemetry.Counters, dict *labels.Dictionary) {
	api := router.Group("/api/v1")
	{
		api.GET("/counters", handleCounters(counters))
		api.GET("/labels", handleLabels(dict))
	}
}

func handleCounters(counters *telemetry.Counters) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, counters.Snapshot())
	}
}

func handleLabels(dict *labels.Dictionary) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"size":   dict.Size(),
			"labels": dict.Labels(),
		})
	}
}
