package handler

import (
	"jobboard_chat/internal/config"
	"jobboard_chat/internal/service"
	"jobboard_chat/pkg/logger"
)

type Handlers struct {
	Health       *HealthHandler
	Conversation *ConversationHandler
	Stream       *StreamHandler
	Stats        *StatsHandler
	Events       *EventsHandler
}

func NewHandlers(services *service.Services, checks map[string]HealthCheck, cfg *config.Config, log logger.Logger) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(checks),
		Conversation: NewConversationHandler(services.Conversation, log),
		Stream: NewStreamHandler(
			services.Conversation,
			cfg.Server.AllowedOrigins,
			cfg.Chat.StreamSendBuffer,
			cfg.Chat.StreamPingPeriod,
			log,
		),
		Stats:  NewStatsHandler(services.Stats, log),
		Events: NewEventsHandler(services.Events, log),
	}
}
