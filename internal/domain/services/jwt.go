// Package services содержит доменные типы и ошибки сервисов токенов и паролей.
package services

import (
	"errors"
	"time"
)

// Ошибки сервиса токенов.
var (
	ErrConfiguration      = errors.New("token service is not configured")
	ErrInvalidJWTToken    = errors.New("invalid JWT token")
	ErrExpiredJWTToken    = errors.New("JWT token has expired")
	ErrMalformedClaim     = errors.New("identity claim is missing or malformed")
	ErrGeneratingJWTToken = errors.New("failed to generate JWT token")
)

// JWTConfig содержит настройки JWT сервиса.
type JWTConfig struct {
	SecretKey []byte
	TokenTTL  time.Duration
	Issuer    string
	Audience  string
}

// JWTClaims - доменное представление содержимого токена.
type JWTClaims struct {
	UserID    int64
	Issuer    string
	Audience  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IssuedToken - выпущенный токен и момент его истечения.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}
