// Package users содержит HTTP обработчик справочника пользователей.
package users

import (
	"github.com/gofiber/fiber/v3"

	"notekeeper/internal/adapters/http/dto"
	"notekeeper/internal/adapters/http/middleware"
	"notekeeper/internal/ports/api"
)

// Handler отдает список пользователей без хэшей паролей.
type Handler struct {
	userUseCase api.UserUseCase
}

// NewHandler создает обработчик.
func NewHandler(userUseCase api.UserUseCase) *Handler {
	return &Handler{userUseCase: userUseCase}
}

// List возвращает id и имена всех пользователей.
func (h *Handler) List(c fiber.Ctx) error {
	users, err := h.userUseCase.ListUsers(middleware.RequestContext(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserSummaries(users))
}
