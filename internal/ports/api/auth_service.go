// Package api определяет входные порты бизнес-логики.
package api

import (
	"context"

	"notekeeper/internal/domain/entities"
	"notekeeper/internal/domain/services"
)

// AuthUseCase - регистрация и вход.
type AuthUseCase interface {
	Signup(ctx context.Context, username, password string) (*entities.User, error)

	Authenticate(ctx context.Context, username, password string) (*entities.User, error)

	Login(ctx context.Context, username, password string) (*services.IssuedToken, *entities.User, error)
}

// UserUseCase - справочник пользователей.
type UserUseCase interface {
	ListUsers(ctx context.Context) ([]*entities.User, error)
}
