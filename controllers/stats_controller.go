package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/standupbot/services"
	"github.com/cppla/standupbot/utils"
)

// StatsReader returns aggregate counts.
type StatsReader interface {
	Stats(ctx context.Context) (services.Stats, error)
}

// StatsController provides bot statistics such as counts and today's submissions.
type StatsController struct {
	stats StatsReader
	log   *zap.Logger
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(stats StatsReader, log *zap.Logger) *StatsController {
	return &StatsController{stats: stats, log: log}
}

// GetStats returns aggregate statistics for the bot.
func (s *StatsController) GetStats(ctx *gin.Context) {
	st, err := s.stats.Stats(ctx.Request.Context())
	if err != nil {
		respondError(ctx, s.log, err)
		return
	}
	utils.Success(ctx, st)
}

// Health answers the plain liveness string.
func (s *StatsController) Health(ctx *gin.Context) {
	ctx.String(http.StatusOK, "Alive!")
}
