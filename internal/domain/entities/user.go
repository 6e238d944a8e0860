// Package entities содержит доменные сущности сервиса заметок.
package entities

import (
	"errors"
	"time"
)

// Ошибки домена пользователя.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicateIdentifier = errors.New("user already exists")
	ErrInvalidIdentifier   = errors.New("username must be between 1 and 255 characters")
)

// MaxIdentifierLength - максимальная длина имени пользователя в символах.
const MaxIdentifierLength = 255

// User представляет зарегистрированного пользователя.
// Хэш пароля никогда не сериализуется.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
