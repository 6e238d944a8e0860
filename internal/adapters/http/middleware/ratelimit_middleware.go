package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notekeeper/internal/domain/services"
	svc "notekeeper/internal/ports/services"
	"notekeeper/pkg/logger"
)

// Заголовки ограничения частоты запросов.
const (
	HeaderRateLimit     = "X-RateLimit-Limit"
	HeaderRateRemaining = "X-RateLimit-Remaining"

	LogLimiterUnavailable = "rate limiter unavailable, request allowed"
)

// RateLimitObserver считает отклоненные запросы.
type RateLimitObserver interface {
	RateLimited()
}

// NewRateLimitMiddleware ограничивает частоту запросов по IP клиента.
// Недоступность хранилища лимитов не блокирует запросы.
func NewRateLimitMiddleware(limiter svc.RateLimiter, observer RateLimitObserver) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx := RequestContext(c)

		decision, err := limiter.Allow(ctx, c.IP())
		if err != nil {
			logger.Log(ctx).Warn(ctx, LogLimiterUnavailable, zap.Error(err))
			return c.Next()
		}

		c.Set(HeaderRateLimit, strconv.Itoa(decision.Limit))
		c.Set(HeaderRateRemaining, strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			retryAfter := int(math.Ceil(time.Until(decision.ResetAt).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			if observer != nil {
				observer.RateLimited()
			}
			return services.ErrRateLimited
		}

		return c.Next()
	}
}
