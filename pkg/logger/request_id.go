package logger

import (
	"context"

	"github.com/google/uuid"
)

// MaxRequestIDLength ограничивает идентификатор, пришедший от клиента.
const MaxRequestIDLength = 128

type ctxRequestIDKey struct{}

// NewRequestIDContext сохраняет идентификатор запроса в контексте.
// Пустой или недопустимый идентификатор заменяется новым UUID.
func NewRequestIDContext(ctx context.Context, requestID string) context.Context {
	if !ValidRequestID(requestID) {
		requestID = GenerateRequestID()
	}
	return context.WithValue(ctx, ctxRequestIDKey{}, requestID)
}

// GetRequestID извлекает идентификатор запроса из контекста.
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxRequestIDKey{}).(string)
	return id, ok
}

// GenerateRequestID возвращает новый UUID v4.
func GenerateRequestID() string {
	return uuid.NewString()
}

// ValidRequestID допускает непустые строки до MaxRequestIDLength из букв, цифр и символов "-_.:".
func ValidRequestID(id string) bool {
	if id == "" || len(id) > MaxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		switch c := id[i]; {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.', c == ':':
		default:
			return false
		}
	}
	return true
}
