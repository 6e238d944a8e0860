// Package services определяет порты сервисов токенов, паролей и событий.
package services

import (
	"context"

	domain "notekeeper/internal/domain/services"
)

// TokenService выпускает и проверяет токены идентичности.
type TokenService interface {
	Issue(ctx context.Context, userID int64) (*domain.IssuedToken, error)

	Validate(ctx context.Context, token string) (int64, error)
}
