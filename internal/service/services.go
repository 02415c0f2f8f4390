package service

import (
	"fmt"

	"jobboard_chat/internal/config"
	"jobboard_chat/internal/events"
	"jobboard_chat/internal/realtime"
	"jobboard_chat/internal/repository"
	"jobboard_chat/pkg/logger"
)

type Services struct {
	Conversation ConversationService
	Names        *NameResolver
	Stats        StatsService
	RateLimit    RateLimitService
	Audit        AuditService
	Events       *events.Bus
}

func NewServices(
	repos *repository.Repositories,
	notifier realtime.Notifier,
	profiles ProfileFetcher,
	cfg *config.Config,
	log logger.Logger,
) (*Services, error) {
	audit := NewAuditService(repos.Audit, log)
	bus := events.NewBus(notifier, log)

	names, err := NewNameResolver(profiles, repos.Summary, notifier, audit, cfg.Chat.NameCacheSize, cfg.Profile.Timeout, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create name resolver: %w", err)
	}

	services := &Services{
		Conversation: NewConversationService(repos.Message, repos.Summary, names, notifier, bus, audit, log),
		Names:        names,
		Stats:        NewStatsService(repos.Stats, log),
		RateLimit:    NewRateLimitService(repos.RateLimit, log),
		Audit:        audit,
		Events:       bus,
	}

	log.Info("Services initialized", "realtime_backend", cfg.Chat.RealtimeBackend)

	return services, nil
}
