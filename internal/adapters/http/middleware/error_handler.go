// Package middleware содержит промежуточное ПО для HTTP обработчиков.
package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notekeeper/internal/adapters/http/dto"
	"notekeeper/internal/domain/entities"
	"notekeeper/internal/domain/services"
	"notekeeper/pkg/logger"
)

// Константы для логирования.
const (
	LogClientError     = "request rejected"
	LogServerError     = "request failed"
	LogSendErrorFailed = "failed to send error response"

	ErrorInternal = "internal server error"
)

type errorMapping struct {
	target error
	status int
}

// Порядок важен: первое совпадение определяет статус.
var errorMappings = []errorMapping{
	{services.ErrUnauthenticated, fiber.StatusUnauthorized},
	{services.ErrIdentityMissing, fiber.StatusUnauthorized},
	{services.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{entities.ErrDuplicateIdentifier, fiber.StatusBadRequest},
	{entities.ErrInvalidIdentifier, fiber.StatusBadRequest},
	{entities.ErrInvalidNote, fiber.StatusBadRequest},
	{services.ErrInvalidPassword, fiber.StatusBadRequest},
	{services.ErrEmptyQuery, fiber.StatusBadRequest},
	{dto.ErrInvalidRequest, fiber.StatusBadRequest},
	{dto.ErrInvalidNoteID, fiber.StatusBadRequest},
	{entities.ErrNoteNotFound, fiber.StatusNotFound},
	{entities.ErrRecipientNotFound, fiber.StatusNotFound},
	{services.ErrRateLimited, fiber.StatusTooManyRequests},
}

// StatusFor возвращает HTTP статус и безопасное сообщение для ошибки.
// Неизвестные ошибки дают 500 без подробностей.
func StatusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.target.Error()
		}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	return fiber.StatusInternalServerError, ErrorInternal
}

// ErrorHandler - единый обработчик ошибок fiber приложения.
func ErrorHandler(c fiber.Ctx, err error) error {
	ctx := RequestContext(c)
	log := logger.Log(ctx).With(
		zap.String("path", c.Path()),
		zap.String("method", c.Method()),
	)

	status, message := StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		log.Error(ctx, LogServerError, zap.Int("status", status), zap.Error(err))
	} else {
		log.Debug(ctx, LogClientError, zap.Int("status", status), zap.Error(err))
	}

	if sendErr := c.Status(status).JSON(fiber.Map{"error": message}); sendErr != nil {
		log.Error(ctx, LogSendErrorFailed, zap.Error(sendErr))
		return sendErr
	}
	return nil
}
