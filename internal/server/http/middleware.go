package http

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

const (
	callerIdHeader  = "trainset-builder-caller-id"
	AuthTokenHeader = "trainset-builder-auth-token"

	authTokenKey = "APP_AUTH_TOKEN"
)

// AuthMiddleware validates authentication headers. With no APP_AUTH_TOKEN
// configured the surface is open, which is the usual setup for a batch job
// scraped only from inside the cluster.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip auth for health check
		if c.Request.URL.Path == "/health/self" {
			c.Next()
			return
		}

		expectedToken := viper.GetString(authTokenKey)
		if expectedToken == "" {
			c.Next()
			return
		}

		callerId := c.GetHeader(callerIdHeader)
		authToken := c.GetHeader(AuthTokenHeader)

		if callerId == "" {
			c.JSON(400, gin.H{"error": callerIdHeader + " header is missing"})
			c.Abort()
			return
		}

		if authToken != expectedToken {
			c.JSON(401, gin.H{"error": "Invalid auth token"})
			c.Abort()
			return
		}

		c.Next()
	}
}
