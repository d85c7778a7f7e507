package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const MaxRequestsPerMinute = 120

// Limiter counts requests per client within the current window.
type Limiter interface {
	IncrementClientRateLimit(ctx context.Context, clientID string) (int64, error)
}

// RateLimit rejects clients exceeding the per-minute budget. Counter
// failures let the request through; throttling is best effort.
func RateLimit(limiter Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.Query("student_id")
		if clientID == "" {
			clientID = c.ClientIP()
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := limiter.IncrementClientRateLimit(ctx, clientID)
		if err != nil {
			logger.Error("failed to check rate limit",
				zap.String("client_id", clientID),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if count > MaxRequestsPerMinute {
			logger.Warn("rate limit exceeded",
				zap.String("client_id", clientID),
				zap.Int64("count", count),
			)

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("rate limit exceeded: at most %d requests per minute", MaxRequestsPerMinute),
			})
			return
		}

		c.Next()
	}
}
