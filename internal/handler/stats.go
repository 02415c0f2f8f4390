package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"jobboard_chat/internal/service"
	"jobboard_chat/pkg/logger"
)

type StatsHandler struct {
	statsService service.StatsService
	log          logger.Logger
}

func NewStatsHandler(statsService service.StatsService, log logger.Logger) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		log:          log,
	}
}

// GetUnreadCount - счетчик для бейджа в шапке админки
func (h *StatsHandler) GetUnreadCount(c *gin.Context) {
	employerID, ok := employerAccess(c)
	if !ok {
		return
	}

	stats, err := h.statsService.GetEmployerStats(c.Request.Context(), employerID)
	if err != nil {
		respondError(c, h.log, "Failed to get employer chat stats", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
