package service

import (
	"context"
	"time"

	"jobboard_chat/internal/repository"
	"jobboard_chat/pkg/logger"
)

type RateLimitService interface {
	// Allow засчитывает попадание и сообщает, укладывается ли ключ в лимит окна
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type rateLimitService struct {
	rateLimitRepo repository.RateLimitRepository
	log           logger.Logger
}

func NewRateLimitService(rateLimitRepo repository.RateLimitRepository, log logger.Logger) RateLimitService {
	return &rateLimitService{
		rateLimitRepo: rateLimitRepo,
		log:           log,
	}
}

func (s *rateLimitService) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return true, nil
	}

	count, err := s.rateLimitRepo.Hit(ctx, key, window)
	if err != nil {
		return false, err
	}

	if count > int64(limit) {
		s.log.Debug("Rate limit exceeded", "key", key, "count", count, "limit", limit)
		return false, nil
	}
	return true, nil
}
