// Package auth содержит HTTP обработчики регистрации и входа.
package auth

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notekeeper/internal/adapters/http/dto"
	"notekeeper/internal/adapters/http/middleware"
	"notekeeper/internal/ports/api"
	"notekeeper/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerSignup = "auth handler: signup"
	LogHandlerLogin  = "auth handler: login"

	MsgUserRegistered = "user registered successfully"
)

// Handler содержит HTTP обработчики для авторизации.
type Handler struct {
	authUseCase api.AuthUseCase
}

// NewHandler создает новый экземпляр обработчика авторизации.
func NewHandler(authUseCase api.AuthUseCase) *Handler {
	return &Handler{authUseCase: authUseCase}
}

// Signup обрабатывает запрос на регистрацию нового пользователя.
func (h *Handler) Signup(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	log := logger.Log(ctx)
	log.Debug(ctx, LogHandlerSignup)

	var req dto.SignupRequest
	if err := c.Bind().JSON(&req); err != nil {
		return fmt.Errorf("%w: %w", dto.ErrInvalidRequest, err)
	}

	user, err := h.authUseCase.Signup(ctx, req.Username, req.Password)
	if err != nil {
		return err
	}

	log.Info(ctx, MsgUserRegistered, zap.Int64("user_id", user.ID))
	return c.Status(fiber.StatusOK).JSON(dto.SignupResponse{
		Message: MsgUserRegistered,
		User:    dto.NewUserResponse(user),
	})
}

// Login обрабатывает запрос на вход пользователя.
func (h *Handler) Login(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	logger.Log(ctx).Debug(ctx, LogHandlerLogin)

	var req dto.LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return fmt.Errorf("%w: %w", dto.ErrInvalidRequest, err)
	}

	token, user, err := h.authUseCase.Login(ctx, req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(dto.LoginResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		UserID:    user.ID,
	})
}
