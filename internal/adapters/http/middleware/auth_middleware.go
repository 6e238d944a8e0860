package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notekeeper/internal/domain/services"
	"notekeeper/internal/ports/api"
	"notekeeper/pkg/logger"
)

// Константы для логирования.
const (
	LogAuthMiddleware = "auth middleware"

	ErrorNoAuthHeader       = "no authorization header provided"
	ErrorInvalidTokenFormat = "invalid token format"

	bearerPrefix = "Bearer "
)

// NewAuthMiddleware проверяет bearer-токен и кладет идентификатор пользователя в Locals.
func NewAuthMiddleware(resolver api.IdentityResolver) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx := RequestContext(c)
		log := logger.Log(ctx).With(zap.String("middleware", "auth"))
		log.Debug(ctx, LogAuthMiddleware)

		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fmt.Errorf("%s: %w", ErrorNoAuthHeader, services.ErrUnauthenticated)
		}
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			return fmt.Errorf("%s: %w", ErrorInvalidTokenFormat, services.ErrUnauthenticated)
		}

		userID, err := resolver.ResolveIdentity(ctx, strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix)))
		if err != nil {
			return err
		}

		c.Locals(LocalsUserID, userID)
		userLog := logger.Log(ctx).With(zap.Int64("user_id", userID))
		setRequestContext(c, logger.NewContext(ctx, userLog))

		return c.Next()
	}
}

// UserID возвращает идентификатор пользователя, установленный NewAuthMiddleware.
func UserID(c fiber.Ctx) (int64, error) {
	userID, ok := c.Locals(LocalsUserID).(int64)
	if !ok || userID <= 0 {
		return 0, services.ErrIdentityMissing
	}
	return userID, nil
}
