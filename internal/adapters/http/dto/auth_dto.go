// Package dto содержит объекты запросов и ответов HTTP API.
package dto

import (
	"errors"
	"time"

	"notekeeper/internal/domain/entities"
)

// Ошибки разбора запросов.
var (
	ErrInvalidRequest = errors.New("invalid request body")
	ErrInvalidNoteID  = errors.New("invalid note id")
)

// SignupRequest представляет запрос на регистрацию.
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest представляет запрос на вход.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse - публичное представление пользователя, без хэша пароля.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// SignupResponse представляет ответ на регистрацию.
type SignupResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// LoginResponse представляет ответ на вход.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    int64     `json:"user_id"`
}

// UserSummary - элемент справочника пользователей.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// MessageResponse - ответ, состоящий из одного сообщения.
type MessageResponse struct {
	Message string `json:"message"`
}

// NewUserResponse конвертирует сущность пользователя в ответ.
func NewUserResponse(user *entities.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
}

// NewUserSummaries конвертирует список пользователей.
func NewUserSummaries(users []*entities.User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, UserSummary{ID: u.ID, Username: u.Username})
	}
	return out
}
