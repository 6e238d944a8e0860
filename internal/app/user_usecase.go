package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"notekeeper/internal/domain/entities"
	"notekeeper/internal/ports/api"
	"notekeeper/internal/ports/repositories"
	"notekeeper/pkg/logger"
)

// UserUseCaseImpl реализует интерфейс UserUseCase.
type UserUseCaseImpl struct {
	userRepo repositories.UserRepository
}

var _ api.UserUseCase = (*UserUseCaseImpl)(nil)

// NewUserUseCase создает новый экземпляр справочника пользователей.
func NewUserUseCase(userRepo repositories.UserRepository) *UserUseCaseImpl {
	return &UserUseCaseImpl{userRepo: userRepo}
}

// ListUsers возвращает всех пользователей.
func (u *UserUseCaseImpl) ListUsers(ctx context.Context) ([]*entities.User, error) {
	users, err := u.userRepo.List(ctx)
	if err != nil {
		logger.Log(ctx).Error(ctx, "failed to list users", zap.String("method", "ListUsers"), zap.Error(err))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}
