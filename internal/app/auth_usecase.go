// Package app содержит бизнес-логику: аутентификацию, разграничение доступа к заметкам и поиск.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"notekeeper/internal/domain/entities"
	"notekeeper/internal/domain/services"
	"notekeeper/internal/ports/api"
	"notekeeper/internal/ports/repositories"
	svc "notekeeper/internal/ports/services"
	"notekeeper/pkg/logger"
)

const (
	methodSignup       = "Signup"
	methodAuthenticate = "Authenticate"
	methodLogin        = "Login"

	msgStartSignup         = "starting user signup"
	msgInvalidIdentifier   = "invalid username"
	msgUsernameExists      = "user with this username already exists"
	msgUserRegistered      = "user registered successfully"
	msgAuthAttempt         = "authentication attempt"
	msgAuthUnknownUser     = "authentication attempt with unknown username"
	msgInvalidPasswordAuth = "invalid password provided"
	msgUserLoggedIn        = "user logged in successfully"
	msgDummyHashFailed     = "failed to prepare dummy hash"

	msgErrCheckExistingUser = "failed to check existing user"
	msgErrHashPassword      = "failed to hash password"
	msgErrCreateUser        = "failed to create user"
	msgErrFindingUser       = "error finding user by username"
	msgErrVerifyingPassword = "error verifying password"
	msgErrIssueToken        = "failed to issue token on login"

	errCtxValidatingUsername = "validating username"
	errCtxCheckingUser       = "checking existing user"
	errCtxUsernameTaken      = "username already registered"
	errCtxHashingPassword    = "hashing password"
	errCtxCreatingUser       = "creating user"
	errCtxFindingUser        = "finding user"
	errCtxVerifyingPassword  = "verifying password"
	errCtxInvalidCredentials = "invalid credentials"
	errCtxIssuingToken       = "issuing token"

	// dummyPassword хэшируется при создании сервиса, чтобы вход с неизвестным именем
	// тратил на bcrypt столько же времени, сколько вход с неверным паролем.
	dummyPassword = "notekeeper-timing-equalizer"
)

// AuthUseCaseImpl реализует интерфейс AuthUseCase.
type AuthUseCaseImpl struct {
	userRepo    repositories.UserRepository
	passwordSvc svc.PasswordService
	tokenSvc    svc.TokenService
	dummyHash   string
}

var _ api.AuthUseCase = (*AuthUseCaseImpl)(nil)

// NewAuthUseCase создает новый экземпляр сервиса аутентификации.
func NewAuthUseCase(
	userRepo repositories.UserRepository,
	passwordSvc svc.PasswordService,
	tokenSvc svc.TokenService,
) *AuthUseCaseImpl {
	ctx := context.Background()
	dummyHash, err := passwordSvc.Hash(ctx, dummyPassword)
	if err != nil {
		logger.Log(ctx).Warn(ctx, msgDummyHashFailed, zap.Error(err))
	}

	return &AuthUseCaseImpl{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		dummyHash:   dummyHash,
	}
}

// Signup регистрирует пользователя. Имя сравнивается с учетом регистра.
func (a *AuthUseCaseImpl) Signup(ctx context.Context, username, password string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodSignup), zap.String("username", username))
	log.Debug(ctx, msgStartSignup)

	if err := validateUsername(username); err != nil {
		log.Debug(ctx, msgInvalidIdentifier, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingUsername, err)
	}

	existingUser, err := a.userRepo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, entities.ErrUserNotFound) {
		log.Error(ctx, msgErrCheckExistingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingUser, err)
	}
	if existingUser != nil {
		log.Debug(ctx, msgUsernameExists)
		return nil, fmt.Errorf("%s: %w", errCtxUsernameTaken, entities.ErrDuplicateIdentifier)
	}

	hashedPassword, err := a.passwordSvc.Hash(ctx, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPassword) {
			log.Debug(ctx, msgErrHashPassword, zap.Error(err))
		} else {
			log.Error(ctx, msgErrHashPassword, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	createdUser, err := a.userRepo.Create(ctx, &entities.User{
		Username:     username,
		PasswordHash: hashedPassword,
	})
	if err != nil {
		if errors.Is(err, entities.ErrDuplicateIdentifier) {
			log.Debug(ctx, msgUsernameExists)
		} else {
			log.Error(ctx, msgErrCreateUser, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxCreatingUser, err)
	}

	log.Info(ctx, msgUserRegistered, zap.Int64("userID", createdUser.ID))
	return createdUser, nil
}

// Authenticate проверяет учетные данные. Неизвестное имя и неверный пароль
// неразличимы ни по ошибке, ни по времени ответа.
func (a *AuthUseCaseImpl) Authenticate(ctx context.Context, username, password string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodAuthenticate), zap.String("username", username))
	log.Debug(ctx, msgAuthAttempt)

	user, err := a.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			a.compareDummy(ctx, password)
			log.Debug(ctx, msgAuthUnknownUser)
			return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	ok, err := a.passwordSvc.Verify(ctx, password, user.PasswordHash)
	if err != nil && !errors.Is(err, services.ErrInvalidPassword) {
		log.Error(ctx, msgErrVerifyingPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxVerifyingPassword, err)
	}
	if !ok {
		log.Debug(ctx, msgInvalidPasswordAuth)
		return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
	}

	return user, nil
}

// Login проверяет учетные данные и выпускает токен.
func (a *AuthUseCaseImpl) Login(ctx context.Context, username, password string) (*services.IssuedToken, *entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodLogin), zap.String("username", username))

	user, err := a.Authenticate(ctx, username, password)
	if err != nil {
		return nil, nil, err
	}

	token, err := a.tokenSvc.Issue(ctx, user.ID)
	if err != nil {
		log.Error(ctx, msgErrIssueToken, zap.Error(err))
		return nil, nil, fmt.Errorf("%s: %w", errCtxIssuingToken, err)
	}

	log.Info(ctx, msgUserLoggedIn, zap.Int64("userID", user.ID))
	return token, user, nil
}

func (a *AuthUseCaseImpl) compareDummy(ctx context.Context, password string) {
	if a.dummyHash == "" {
		return
	}
	_, _ = a.passwordSvc.Verify(ctx, password, a.dummyHash)
}

func validateUsername(username string) error {
	if n := utf8.RuneCountInString(username); n == 0 || n > entities.MaxIdentifierLength {
		return entities.ErrInvalidIdentifier
	}
	if !utf8.ValidString(username) || strings.ContainsRune(username, 0) {
		return entities.ErrInvalidIdentifier
	}
	return nil
}
