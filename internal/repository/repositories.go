package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"jobboard_chat/pkg/logger"
)

type Repositories struct {
	Message   MessageRepository
	Summary   SummaryRepository
	Stats     StatsRepository
	Audit     AuditRepository
	RateLimit RateLimitRepository
}

func NewRepositories(db *pgxpool.Pool, redis *redis.Client, log logger.Logger) *Repositories {
	repos := &Repositories{
		Message:   NewMessageRepository(db, log),
		Summary:   NewSummaryRepository(db, log),
		Stats:     NewStatsRepository(db, log),
		Audit:     NewAuditRepository(db, log),
		RateLimit: NewRateLimitRepository(redis, log),
	}

	log.Info("Repositories initialized")

	return repos
}
