package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health reports connectivity to the backing stores.
func (h *ApplicationHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	postgresState := "up"
	redisState := "up"

	if err := h.deps.Store.Ping(ctx); err != nil {
		postgresState = "down"
		status = http.StatusServiceUnavailable
	}

	if err := h.deps.Cache.Ping(ctx); err != nil {
		redisState = "down"
		status = http.StatusServiceUnavailable
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}

	c.JSON(status, gin.H{
		"status":   state,
		"postgres": postgresState,
		"redis":    redisState,
	})
}
