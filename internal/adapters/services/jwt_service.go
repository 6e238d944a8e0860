package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"notekeeper/internal/domain/services"
	svc "notekeeper/internal/ports/services"
	"notekeeper/pkg/logger"
)

// Константы для работы с JWT.
const (
	methodIssue           = "Issue"
	methodValidate        = "Validate"
	msgIssuingToken       = "issuing token"
	msgValidatingToken    = "validating token"
	msgTokenIssued        = "token issued successfully"
	msgTokenValidated     = "token validated successfully"
	msgTokenExpired       = "token has expired"
	msgMalformedClaim     = "id claim is missing or not an integer"
	msgEmptySecretKey     = "empty secret key provided"
	errSigningToken       = "error signing token" //nolint:gosec
	errParsingToken       = "error parsing token"
	errCtxNewJWT          = "creating token service"
	errCtxGeneratingToken = "generating token"
	errCtxParsingToken    = "parsing token"
	errCtxValidatingToken = "validating token"
)

// ErrInvalidAlgorithm представляет статическую ошибку неверного алгоритма подписи.
var ErrInvalidAlgorithm = errors.New("invalid signing algorithm")

// Claims используется для адаптации между доменной моделью и библиотекой JWT.
// Идентификатор пользователя передается строкой в claim "id".
// Тип поля any: claim другого типа должен давать ErrMalformedClaim, а не ошибку разбора токена.
type Claims struct {
	UserID any `json:"id"`
	jwt.RegisteredClaims
}

// ServiceJWT реализует интерфейс TokenService на HS256.
type ServiceJWT struct {
	config services.JWTConfig
	now    func() time.Time
}

var _ svc.TokenService = (*ServiceJWT)(nil)

// NewJWT создает новый экземпляр сервиса JWT. Пустой ключ недопустим.
func NewJWT(config services.JWTConfig) (*ServiceJWT, error) {
	if len(config.SecretKey) == 0 {
		return nil, fmt.Errorf("%s: %w: empty secret key", errCtxNewJWT, services.ErrConfiguration)
	}
	return &ServiceJWT{config: config, now: time.Now}, nil
}

func domainToJWTClaims(claims services.JWTClaims) Claims {
	registered := jwt.RegisteredClaims{
		Issuer:    claims.Issuer,
		ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
	}
	if claims.Audience != "" {
		registered.Audience = jwt.ClaimStrings{claims.Audience}
	}

	return Claims{
		UserID:           strconv.FormatInt(claims.UserID, 10),
		RegisteredClaims: registered,
	}
}

// Issue выпускает подписанный токен для userID.
func (s *ServiceJWT) Issue(ctx context.Context, userID int64) (*services.IssuedToken, error) {
	log := logger.Log(ctx).With(
		zap.String("method", methodIssue),
		zap.Int64("userID", userID),
	)
	log.Debug(ctx, msgIssuingToken)

	if len(s.config.SecretKey) == 0 {
		log.Error(ctx, msgEmptySecretKey)
		return nil, fmt.Errorf("%s: %w: empty secret key", errCtxGeneratingToken, services.ErrConfiguration)
	}

	// NumericDate хранит секунды, поэтому expiresAt усекается так же, как в токене.
	now := s.now().Truncate(time.Second)
	expiresAt := now.Add(s.config.TokenTTL)

	jwtClaims := domainToJWTClaims(services.JWTClaims{
		UserID:    userID,
		Issuer:    s.config.Issuer,
		Audience:  s.config.Audience,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims)

	tokenString, err := token.SignedString(s.config.SecretKey)
	if err != nil {
		log.Error(ctx, errSigningToken, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errCtxGeneratingToken, services.ErrGeneratingJWTToken, err)
	}

	log.Debug(ctx, msgTokenIssued, zap.Time("expiresAt", expiresAt))
	return &services.IssuedToken{Token: tokenString, ExpiresAt: expiresAt}, nil
}

// Validate проверяет подпись, издателя, аудиторию и срок действия токена
// и возвращает ID пользователя из claim "id".
func (s *ServiceJWT) Validate(ctx context.Context, tokenString string) (int64, error) {
	log := logger.Log(ctx).With(zap.String("method", methodValidate))
	log.Debug(ctx, msgValidatingToken)

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAlgorithm, token.Header["alg"])
		}
		return s.config.SecretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithAudience(s.config.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug(ctx, msgTokenExpired)
			return 0, fmt.Errorf("%s: %w", errCtxValidatingToken, services.ErrExpiredJWTToken)
		}
		log.Debug(ctx, errParsingToken, zap.Error(err))
		return 0, fmt.Errorf("%s: %w: %w", errCtxParsingToken, services.ErrInvalidJWTToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("%s: %w", errCtxValidatingToken, services.ErrInvalidJWTToken)
	}

	userID, err := parseUserID(claims.UserID)
	if err != nil {
		log.Debug(ctx, msgMalformedClaim, zap.Any("id", claims.UserID))
		return 0, fmt.Errorf("%s: %w", errCtxValidatingToken, err)
	}

	log.Debug(ctx, msgTokenValidated, zap.Int64("userID", userID))
	return userID, nil
}

func parseUserID(raw any) (int64, error) {
	idStr, ok := raw.(string)
	if !ok {
		return 0, fmt.Errorf("%w: id claim has type %T", services.ErrMalformedClaim, raw)
	}
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", services.ErrMalformedClaim, err)
	}
	return userID, nil
}
