package services

import (
	"context"
	"time"
)

// RateDecision - результат проверки лимита для одного ключа.
type RateDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiter считает запросы по ключу в пределах окна.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*RateDecision, error)
}
