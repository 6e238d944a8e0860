// Package services реализует сервисы паролей и токенов на bcrypt и golang-jwt.
package services

import (
	"notekeeper/internal/domain/services"
	ports "notekeeper/internal/ports/services"
)

// ServiceFactory создает все необходимые сервисы для аутентификации.
type ServiceFactory struct {
	passwordService ports.PasswordService
	tokenService    ports.TokenService
}

// NewServiceFactory создает фабрику сервисов. Ошибка конфигурации JWT возвращается как есть.
func NewServiceFactory(jwtConfig services.JWTConfig, bcryptCost int) (*ServiceFactory, error) {
	tokenService, err := NewJWT(jwtConfig)
	if err != nil {
		return nil, err
	}

	return &ServiceFactory{
		passwordService: NewBcrypt(bcryptCost),
		tokenService:    tokenService,
	}, nil
}

// PasswordService возвращает сервис для работы с паролями.
func (f *ServiceFactory) PasswordService() ports.PasswordService {
	return f.passwordService
}

// TokenService возвращает сервис для работы с токенами.
func (f *ServiceFactory) TokenService() ports.TokenService {
	return f.tokenService
}
