package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"notekeeper/internal/domain/entities"
	"notekeeper/internal/domain/services"
	"notekeeper/internal/ports/api"
	"notekeeper/internal/ports/repositories"
	svc "notekeeper/internal/ports/services"
	"notekeeper/pkg/logger"
)

// Имена операций, используемые в логах и метриках.
const (
	OpListOwned        = "list_owned"
	OpGetOwned         = "get_owned"
	OpCreate           = "create"
	OpUpdate           = "update"
	OpDelete           = "delete"
	OpShare            = "share"
	OpVisibleForSearch = "visible_for_search"
)

const (
	methodResolveIdentity = "ResolveIdentity"

	msgEmptyToken        = "empty bearer token"
	msgTokenRejected     = "token rejected"
	msgIdentityMissing   = "token carries no usable identity"
	msgInvalidNote       = "note fields rejected"
	msgNoteNotFound      = "note not found for identity"
	msgNoteCreated       = "note created"
	msgNoteUpdated       = "note updated"
	msgNoteDeleted       = "note deleted"
	msgNoteShared        = "note shared"
	msgShareRejected     = "share rejected"
	msgPublishFailed     = "failed to publish share event"
	msgErrNoteRepository = "note repository error"

	errCtxResolvingIdentity = "resolving identity"
	errCtxListingNotes      = "listing notes"
	errCtxGettingNote       = "getting note"
	errCtxCreatingNote      = "creating note"
	errCtxUpdatingNote      = "updating note"
	errCtxDeletingNote      = "deleting note"
	errCtxSharingNote       = "sharing note"
	errCtxVisibleNotes      = "collecting visible notes"
)

// NoteUseCaseImpl реализует разграничение доступа к заметкам.
// Каждая операция выполняется от имени явно переданной идентичности.
type NoteUseCaseImpl struct {
	noteRepo  repositories.NoteRepository
	shareRepo repositories.ShareRepository
	tokenSvc  svc.TokenService
	publisher svc.ShareEventPublisher
	metrics   svc.NoteMetrics
	now       func() time.Time
}

var _ api.NoteUseCase = (*NoteUseCaseImpl)(nil)

// NoteOption настраивает NoteUseCaseImpl.
type NoteOption func(*NoteUseCaseImpl)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) NoteOption {
	return func(u *NoteUseCaseImpl) {
		u.now = now
	}
}

// WithShareEventPublisher включает публикацию событий о выдаче доступа.
func WithShareEventPublisher(publisher svc.ShareEventPublisher) NoteOption {
	return func(u *NoteUseCaseImpl) {
		u.publisher = publisher
	}
}

// WithNoteMetrics включает учет операций.
func WithNoteMetrics(metrics svc.NoteMetrics) NoteOption {
	return func(u *NoteUseCaseImpl) {
		u.metrics = metrics
	}
}

// NewNoteUseCase создает новый экземпляр сервиса заметок.
func NewNoteUseCase(
	noteRepo repositories.NoteRepository,
	shareRepo repositories.ShareRepository,
	tokenSvc svc.TokenService,
	opts ...NoteOption,
) *NoteUseCaseImpl {
	u := &NoteUseCaseImpl{
		noteRepo:  noteRepo,
		shareRepo: shareRepo,
		tokenSvc:  tokenSvc,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// ResolveIdentity возвращает ID пользователя из bearer-токена.
func (u *NoteUseCaseImpl) ResolveIdentity(ctx context.Context, token string) (int64, error) {
	log := logger.Log(ctx).With(zap.String("method", methodResolveIdentity))

	if token == "" {
		log.Debug(ctx, msgEmptyToken)
		return 0, services.ErrUnauthenticated
	}

	userID, err := u.tokenSvc.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, services.ErrMalformedClaim) {
			log.Debug(ctx, msgIdentityMissing, zap.Error(err))
			return 0, fmt.Errorf("%s: %w", errCtxResolvingIdentity, services.ErrIdentityMissing)
		}
		log.Debug(ctx, msgTokenRejected, zap.Error(err))
		return 0, fmt.Errorf("%s: %w: %w", errCtxResolvingIdentity, services.ErrUnauthenticated, err)
	}
	if userID <= 0 {
		log.Debug(ctx, msgIdentityMissing, zap.Int64("userID", userID))
		return 0, fmt.Errorf("%s: %w", errCtxResolvingIdentity, services.ErrIdentityMissing)
	}

	return userID, nil
}

// ListOwned возвращает заметки пользователя в порядке создания.
func (u *NoteUseCaseImpl) ListOwned(ctx context.Context, userID int64) (notes []*entities.Note, err error) {
	defer u.record(OpListOwned, &err)

	notes, err = u.noteRepo.ListByOwner(ctx, userID)
	if err != nil {
		u.logRepoError(ctx, OpListOwned, userID, err)
		return nil, fmt.Errorf("%s: %w", errCtxListingNotes, err)
	}
	return notes, nil
}

// GetOwned возвращает заметку, только если ею владеет userID. Доступы не учитываются.
func (u *NoteUseCaseImpl) GetOwned(ctx context.Context, userID, noteID int64) (note *entities.Note, err error) {
	defer u.record(OpGetOwned, &err)

	note, err = u.noteRepo.FindOwned(ctx, noteID, userID)
	if err != nil {
		u.logRepoError(ctx, OpGetOwned, userID, err)
		return nil, fmt.Errorf("%s: %w", errCtxGettingNote, err)
	}
	return note, nil
}

// Create создает заметку, владельцем которой становится userID.
func (u *NoteUseCaseImpl) Create(ctx context.Context, userID int64, title, content string) (note *entities.Note, err error) {
	defer u.record(OpCreate, &err)
	log := logger.Log(ctx).With(zap.String("operation", OpCreate), zap.Int64("userID", userID))

	if vErr := entities.ValidateNoteFields(title, content); vErr != nil {
		log.Debug(ctx, msgInvalidNote, zap.Error(vErr))
		return nil, fmt.Errorf("%s: %w", errCtxCreatingNote, vErr)
	}

	note, err = u.noteRepo.Create(ctx, entities.NewNote(userID, title, content, u.now()))
	if err != nil {
		u.logRepoError(ctx, OpCreate, userID, err)
		return nil, fmt.Errorf("%s: %w", errCtxCreatingNote, err)
	}

	log.Info(ctx, msgNoteCreated, zap.Int64("noteID", note.ID))
	return note, nil
}

// Update заменяет заголовок и текст заметки владельца.
func (u *NoteUseCaseImpl) Update(ctx context.Context, userID, noteID int64, title, content string) (note *entities.Note, err error) {
	defer u.record(OpUpdate, &err)
	log := logger.Log(ctx).With(zap.String("operation", OpUpdate), zap.Int64("userID", userID), zap.Int64("noteID", noteID))

	if vErr := entities.ValidateNoteFields(title, content); vErr != nil {
		log.Debug(ctx, msgInvalidNote, zap.Error(vErr))
		return nil, fmt.Errorf("%s: %w", errCtxUpdatingNote, vErr)
	}

	note, err = u.noteRepo.UpdateOwned(ctx, noteID, userID, title, content, u.now())
	if err != nil {
		u.logRepoError(ctx, OpUpdate, userID, err)
		return nil, fmt.Errorf("%s: %w", errCtxUpdatingNote, err)
	}

	log.Info(ctx, msgNoteUpdated)
	return note, nil
}

// Delete удаляет заметку владельца вместе с выданными на нее доступами.
func (u *NoteUseCaseImpl) Delete(ctx context.Context, userID, noteID int64) (err error) {
	defer u.record(OpDelete, &err)

	if err = u.noteRepo.DeleteOwned(ctx, noteID, userID); err != nil {
		u.logRepoError(ctx, OpDelete, userID, err)
		return fmt.Errorf("%s: %w", errCtxDeletingNote, err)
	}

	logger.Log(ctx).Info(ctx, msgNoteDeleted, zap.Int64("userID", userID), zap.Int64("noteID", noteID))
	return nil
}

// Share выдает recipientID доступ на чтение заметки noteID, которой владеет sharerID.
func (u *NoteUseCaseImpl) Share(ctx context.Context, sharerID, noteID, recipientID int64) (grant *entities.ShareGrant, err error) {
	defer u.record(OpShare, &err)
	log := logger.Log(ctx).With(
		zap.String("operation", OpShare),
		zap.Int64("userID", sharerID),
		zap.Int64("noteID", noteID),
		zap.Int64("recipientID", recipientID),
	)

	grant, err = u.shareRepo.Grant(ctx, &entities.ShareGrant{
		NoteID:      noteID,
		RecipientID: recipientID,
		SharerID:    sharerID,
		SharedAt:    u.now(),
	})
	if err != nil {
		if errors.Is(err, entities.ErrNoteNotFound) || errors.Is(err, entities.ErrRecipientNotFound) {
			log.Debug(ctx, msgShareRejected, zap.Error(err))
		} else {
			log.Error(ctx, msgErrNoteRepository, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxSharingNote, err)
	}

	log.Info(ctx, msgNoteShared, zap.Int64("grantID", grant.ID))

	if u.publisher != nil {
		if pubErr := u.publisher.PublishShared(ctx, grant); pubErr != nil {
			log.Warn(ctx, msgPublishFailed, zap.Error(pubErr))
		}
	}

	return grant, nil
}

// VisibleForSearch возвращает объединение собственных и выданных заметок без повторов.
func (u *NoteUseCaseImpl) VisibleForSearch(ctx context.Context, userID int64) (notes []*entities.Note, err error) {
	defer u.record(OpVisibleForSearch, &err)

	notes, err = u.noteRepo.ListVisible(ctx, userID)
	if err != nil {
		u.logRepoError(ctx, OpVisibleForSearch, userID, err)
		return nil, fmt.Errorf("%s: %w", errCtxVisibleNotes, err)
	}
	return dedupByID(notes), nil
}

func (u *NoteUseCaseImpl) record(operation string, err *error) {
	if u.metrics != nil {
		u.metrics.NoteOperation(operation, *err)
	}
}

func (u *NoteUseCaseImpl) logRepoError(ctx context.Context, operation string, userID int64, err error) {
	log := logger.Log(ctx).With(zap.String("operation", operation), zap.Int64("userID", userID))
	if errors.Is(err, entities.ErrNoteNotFound) {
		log.Debug(ctx, msgNoteNotFound)
		return
	}
	log.Error(ctx, msgErrNoteRepository, zap.Error(err))
}

func dedupByID(notes []*entities.Note) []*entities.Note {
	seen := make(map[int64]struct{}, len(notes))
	result := make([]*entities.Note, 0, len(notes))
	for _, note := range notes {
		if _, ok := seen[note.ID]; ok {
			continue
		}
		seen[note.ID] = struct{}{}
		result = append(result, note)
	}
	return result
}
