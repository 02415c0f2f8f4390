package domain

import (
	"time"
)

// RateLimitRule - лимит запросов одного клиента в пределах окна
type RateLimitRule struct {
	Scope  string        `json:"scope"`
	Limit  int           `json:"limit"`
	Window time.Duration `json:"window"`
}

const (
	RateLimitScopeSend = "send"
)

func SendRateLimit(perMinute int) RateLimitRule {
	return RateLimitRule{Scope: RateLimitScopeSend, Limit: perMinute, Window: time.Minute}
}

// Enabled: нулевой или отрицательный лимит отключает проверку
func (r RateLimitRule) Enabled() bool {
	return r.Limit > 0
}
