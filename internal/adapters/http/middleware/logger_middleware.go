package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notekeeper/pkg/logger"
)

// Ключи и заголовки, общие для промежуточного ПО.
const (
	HeaderRequestID   = "X-Request-ID"
	LocalsRequestCtx  = "requestContext"
	LocalsUserID      = "userID"
	LogRequestStarted = "request started"
	LogRequestDone    = "request completed"
)

// RequestContext возвращает контекст запроса с logger и request_id.
func RequestContext(c fiber.Ctx) context.Context {
	if ctx, ok := c.Locals(LocalsRequestCtx).(context.Context); ok {
		return ctx
	}
	return c.Context()
}

func setRequestContext(c fiber.Ctx, ctx context.Context) {
	c.Locals(LocalsRequestCtx, ctx)
}

// NewLoggerMiddleware создает промежуточное ПО для логирования HTTP запросов.
// Каждый запрос получает request_id из заголовка X-Request-ID или новый.
func NewLoggerMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		ctx := logger.NewRequestIDContext(c.Context(), c.Get(HeaderRequestID))
		requestID, _ := logger.GetRequestID(ctx)
		c.Set(HeaderRequestID, requestID)

		log := logger.Log(ctx).With(
			zap.String("path", c.Path()),
			zap.String("method", c.Method()),
			zap.String("ip", c.IP()),
		)
		ctx = logger.NewContext(ctx, log)
		setRequestContext(c, ctx)

		log.Debug(ctx, LogRequestStarted)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status, _ = StatusFor(err)
		}
		log.Info(ctx, LogRequestDone,
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
		return err
	}
}
