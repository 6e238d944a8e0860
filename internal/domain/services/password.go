package services

import (
	"errors"
)

// Ошибки сервиса паролей.
var (
	ErrHashingFailed   = errors.New("failed to hash password")
	ErrInvalidPassword = errors.New("invalid password")
)

// MinBCryptCost - минимально допустимая стоимость bcrypt.
const MinBCryptCost = 10

// MaxPasswordBytes - предел bcrypt на длину пароля.
const MaxPasswordBytes = 72
