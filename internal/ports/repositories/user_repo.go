// Package repositories определяет интерфейсы хранилища пользователей, заметок и доступов.
package repositories

import (
	"context"

	"notekeeper/internal/domain/entities"
)

// UserRepository определяет операции хранилища учетных данных.
type UserRepository interface {
	// Create сохраняет пользователя; при занятом имени возвращает entities.ErrDuplicateIdentifier.
	Create(ctx context.Context, user *entities.User) (*entities.User, error)

	FindByUsername(ctx context.Context, username string) (*entities.User, error)

	FindByID(ctx context.Context, id int64) (*entities.User, error)

	List(ctx context.Context) ([]*entities.User, error)
}
