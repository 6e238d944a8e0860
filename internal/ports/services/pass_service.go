package services

import "context"

// PasswordService определяет операции хэширования паролей.
type PasswordService interface {
	Hash(ctx context.Context, password string) (string, error)

	Verify(ctx context.Context, password, hash string) (bool, error)
}
