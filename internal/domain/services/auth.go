package services

import (
	"errors"
)

// Ошибки аутентификации и разрешения идентичности.
var (
	// ErrInvalidCredentials одинакова для неизвестного имени и неверного пароля.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("user not authenticated")
	ErrIdentityMissing    = errors.New("user ID is missing in the token")
	ErrEmptyQuery         = errors.New("search query cannot be empty")
	ErrRateLimited        = errors.New("too many requests")
)
