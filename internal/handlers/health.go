package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	ServiceName    = "cricket-booking"
	ServiceVersion = "1.0.0"
)

type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// Health answers 503 when the store does not respond within two seconds.
func Health(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code := "healthy", http.StatusOK
		if err := store.HealthCheck(ctx); err != nil {
			_ = c.Error(err)
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   ServiceName,
			"version":   ServiceVersion,
		})
	}
}
