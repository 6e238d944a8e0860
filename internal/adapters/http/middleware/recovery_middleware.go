package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notekeeper/pkg/logger"
)

// NewRecoveryMiddleware перехватывает панику обработчика и превращает ее в ошибку 500.
func NewRecoveryMiddleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				ctx := RequestContext(c)
				logger.Log(ctx).Error(ctx, "server panic",
					zap.String("error", fmt.Sprintf("%v", r)),
					zap.String("stack", string(debug.Stack())),
				)
				err = fmt.Errorf("panic recovered: %v", r)
			}
		}()

		return c.Next()
	}
}
