package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"jobboard_chat/pkg/logger"
)

const rateLimitKeyPrefix = "chat:ratelimit:%s"

type RateLimitRepository interface {
	// Hit увеличивает счетчик окна и возвращает новое значение
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

type rateLimitRepository struct {
	redis *redis.Client
	log   logger.Logger
}

func NewRateLimitRepository(redis *redis.Client, log logger.Logger) RateLimitRepository {
	return &rateLimitRepository{redis: redis, log: log}
}

func (r *rateLimitRepository) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	redisKey := fmt.Sprintf(rateLimitKeyPrefix, key)

	var incr *redis.IntCmd
	_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		// NX: TTL ставится только на первое попадание в окно
		pipe.ExpireNX(ctx, redisKey, window)
		return nil
	})
	if err != nil {
		r.log.Error("Failed to increment rate limit", "key", key, "error", err)
		return 0, err
	}

	return incr.Val(), nil
}
