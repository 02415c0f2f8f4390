package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"jobboard_chat/pkg/logger"
)

// RefreshPublisher - сигнал обновления, который шлют другие части админки
type RefreshPublisher interface {
	RequestRefresh(ctx context.Context) error
}

type EventsHandler struct {
	events RefreshPublisher
	log    logger.Logger
}

func NewEventsHandler(events RefreshPublisher, log logger.Logger) *EventsHandler {
	return &EventsHandler{
		events: events,
		log:    log,
	}
}

// Refresh - fire-and-forget, тело не нужно
func (h *EventsHandler) Refresh(c *gin.Context) {
	if err := h.events.RequestRefresh(c.Request.Context()); err != nil {
		respondError(c, h.log, "Failed to publish refresh event", err)
		return
	}

	c.Status(http.StatusAccepted)
}
