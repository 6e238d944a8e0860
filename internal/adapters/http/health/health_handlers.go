// Package health содержит обработчик проверки готовности.
package health

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notekeeper/internal/adapters/http/middleware"
	"notekeeper/pkg/logger"
)

const pingTimeout = 2 * time.Second

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler отвечает 200, если база доступна, и 503 иначе.
type Handler struct {
	db Pinger
}

// NewHandler создает обработчик проверки готовности.
func NewHandler(db Pinger) *Handler {
	return &Handler{db: db}
}

// Check выполняет ping базы.
func (h *Handler) Check(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := h.db.Ping(pingCtx); err != nil {
		logger.Log(ctx).Warn(ctx, "health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
