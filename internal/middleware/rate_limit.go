package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"jobboard_chat/internal/domain"
	"jobboard_chat/internal/service"
	"jobboard_chat/pkg/logger"
)

type RateLimitMiddleware struct {
	rateLimitService service.RateLimitService
	log              logger.Logger
}

func NewRateLimitMiddleware(rateLimitService service.RateLimitService, log logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		log:              log,
	}
}

// Limit ограничивает число запросов с одного клиента за окно.
// Если хранилище лимитов недоступно, запрос пропускается.
func (m *RateLimitMiddleware) Limit(rule domain.RateLimitRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rule.Enabled() {
			c.Next()
			return
		}

		client := UserID(c)
		if client == "" {
			client = c.ClientIP()
		}
		key := rule.Scope + ":" + client

		allowed, err := m.rateLimitService.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			m.log.Error("Rate limit check failed", "key", key, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rule.Limit))
		if !allowed {
			c.Header("X-RateLimit-Remaining", "0")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}

		c.Next()
	}
}
