package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/svpddu/studentrecords/internal/app/models/dto"
)

// HealthController reports liveness of the API and its store
type HealthController struct {
	ping   func(ctx context.Context) error
	logger zerolog.Logger
}

// NewHealthController creates a new HealthController. ping may be nil.
func NewHealthController(ping func(ctx context.Context) error, logger zerolog.Logger) *HealthController {
	return &HealthController{ping: ping, logger: logger}
}

// Health answers the liveness probe
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	if c.ping != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := c.ping(pingCtx); err != nil {
			c.logger.Warn().Err(err).Msg("Health check failed")
			ctx.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unavailable"})
			return
		}
	}
	ctx.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}
