package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"notekeeper/internal/app"
	"notekeeper/internal/domain/entities"
	"notekeeper/internal/domain/services"
)

var fixedNow = time.Date(2024, 12, 6, 7, 46, 30, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func TestResolveIdentity(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		token       string
		validateID  int64
		validateErr error
		expectedID  int64
		expectedErr error
	}{
		{name: "Валидный токен", token: "good", validateID: 42, expectedID: 42},
		{name: "Пустой токен", token: "", expectedErr: services.ErrUnauthenticated},
		{name: "Истекший токен", token: "old", validateErr: services.ErrExpiredJWTToken, expectedErr: services.ErrUnauthenticated},
		{name: "Неверная подпись", token: "forged", validateErr: services.ErrInvalidJWTToken, expectedErr: services.ErrUnauthenticated},
		{name: "Нет claim id", token: "noid", validateErr: services.ErrMalformedClaim, expectedErr: services.ErrIdentityMissing},
		{name: "Неположительный id", token: "zero", validateID: 0, expectedErr: services.ErrIdentityMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := new(mockTokenService)
			if tt.token != "" {
				tokens.On("Validate", ctx, tt.token).Return(tt.validateID, tt.validateErr)
			}

			useCase := app.NewNoteUseCase(new(mockNoteRepository), new(mockShareRepository), tokens)
			userID, err := useCase.ResolveIdentity(ctx, tt.token)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Zero(t, userID)
				if tt.validateErr != nil && errors.Is(tt.expectedErr, services.ErrUnauthenticated) {
					assert.ErrorIs(t, err, tt.validateErr, "cause should stay wrapped")
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedID, userID)
			tokens.AssertExpectations(t)
		})
	}
}

func TestNoteUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Владелец и время берутся из идентичности и часов", func(t *testing.T) {
		notes := new(mockNoteRepository)
		notes.On("Create", ctx, mock.MatchedBy(func(n *entities.Note) bool {
			return n.OwnerID == 1 && n.Title == "T" && n.Content == "C" &&
				n.CreatedAt.Equal(fixedNow) && n.UpdatedAt.Equal(fixedNow)
		})).Return(&entities.Note{ID: 5, OwnerID: 1, Title: "T", Content: "C", CreatedAt: fixedNow, UpdatedAt: fixedNow}, nil)

		useCase := app.NewNoteUseCase(notes, new(mockShareRepository), new(mockTokenService), app.WithClock(fixedClock))
		note, err := useCase.Create(ctx, 1, "T", "C")

		require.NoError(t, err)
		assert.Equal(t, int64(5), note.ID)
		notes.AssertExpectations(t)
	})

	t.Run("Слишком длинный заголовок не доходит до хранилища", func(t *testing.T) {
		notes := new(mockNoteRepository)

		useCase := app.NewNoteUseCase(notes, new(mockShareRepository), new(mockTokenService))
		note, err := useCase.Create(ctx, 1, strings.Repeat("x", entities.MaxTitleLength+1), "")

		assert.Nil(t, note)
		assert.ErrorIs(t, err, entities.ErrInvalidNote)
		notes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestNoteUseCase_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Обновление передает владельца и время", func(t *testing.T) {
		notes := new(mockNoteRepository)
		updated := &entities.Note{ID: 5, OwnerID: 1, Title: "T2", Content: "C2", UpdatedAt: fixedNow}
		notes.On("UpdateOwned", ctx, int64(5), int64(1), "T2", "C2", fixedNow).Return(updated, nil)

		useCase := app.NewNoteUseCase(notes, new(mockShareRepository), new(mockTokenService), app.WithClock(fixedClock))
		note, err := useCase.Update(ctx, 1, 5, "T2", "C2")

		require.NoError(t, err)
		assert.Equal(t, updated, note)
	})

	t.Run("Чужая заметка", func(t *testing.T) {
		notes := new(mockNoteRepository)
		notes.On("UpdateOwned", ctx, int64(5), int64(2), "X", "", fixedNow).Return(nil, entities.ErrNoteNotFound)

		useCase := app.NewNoteUseCase(notes, new(mockShareRepository), new(mockTokenService), app.WithClock(fixedClock))
		note, err := useCase.Update(ctx, 2, 5, "X", "")

		assert.Nil(t, note)
		assert.ErrorIs(t, err, entities.ErrNoteNotFound)
	})

	t.Run("Невалидный UTF-8", func(t *testing.T) {
		useCase := app.NewNoteUseCase(new(mockNoteRepository), new(mockShareRepository), new(mockTokenService))
		_, err := useCase.Update(ctx, 1, 5, "ok", string([]byte{0xc3, 0x28}))

		assert.ErrorIs(t, err, entities.ErrInvalidNote)
	})
}

func TestNoteUseCase_Delete(t *testing.T) {
	ctx := context.Background()
	notes := new(mockNoteRepository)
	notes.On("DeleteOwned", ctx, int64(5), int64(1)).Return(nil)
	notes.On("DeleteOwned", ctx, int64(5), int64(2)).Return(entities.ErrNoteNotFound)

	useCase := app.NewNoteUseCase(notes, new(mockShareRepository), new(mockTokenService))

	require.NoError(t, useCase.Delete(ctx, 1, 5))
	assert.ErrorIs(t, useCase.Delete(ctx, 2, 5), entities.ErrNoteNotFound)
}

func TestNoteUseCase_Share(t *testing.T) {
	ctx := context.Background()
	grant := &entities.ShareGrant{ID: 9, NoteID: 5, RecipientID: 2, SharerID: 1, SharedAt: fixedNow}
	expectedRequest := mock.MatchedBy(func(g *entities.ShareGrant) bool {
		return g.NoteID == 5 && g.RecipientID == 2 && g.SharerID == 1 && g.SharedAt.Equal(fixedNow)
	})

	t.Run("Событие публикуется после выдачи доступа", func(t *testing.T) {
		shares := new(mockShareRepository)
		publisher := new(mockPublisher)
		shares.On("Grant", ctx, expectedRequest).Return(grant, nil)
		publisher.On("PublishShared", ctx, grant).Return(nil)

		useCase := app.NewNoteUseCase(new(mockNoteRepository), shares, new(mockTokenService),
			app.WithClock(fixedClock), app.WithShareEventPublisher(publisher))
		got, err := useCase.Share(ctx, 1, 5, 2)

		require.NoError(t, err)
		assert.Equal(t, grant, got)
		publisher.AssertExpectations(t)
	})

	t.Run("Ошибка публикации не ломает выдачу доступа", func(t *testing.T) {
		shares := new(mockShareRepository)
		publisher := new(mockPublisher)
		shares.On("Grant", ctx, expectedRequest).Return(grant, nil)
		publisher.On("PublishShared", ctx, grant).Return(errors.New("broker unavailable"))

		useCase := app.NewNoteUseCase(new(mockNoteRepository), shares, new(mockTokenService),
			app.WithClock(fixedClock), app.WithShareEventPublisher(publisher))
		got, err := useCase.Share(ctx, 1, 5, 2)

		require.NoError(t, err)
		assert.Equal(t, grant, got)
	})

	t.Run("Отказ не публикует событие", func(t *testing.T) {
		shares := new(mockShareRepository)
		publisher := new(mockPublisher)
		shares.On("Grant", ctx, expectedRequest).Return(nil, entities.ErrRecipientNotFound)

		useCase := app.NewNoteUseCase(new(mockNoteRepository), shares, new(mockTokenService),
			app.WithClock(fixedClock), app.WithShareEventPublisher(publisher))
		got, err := useCase.Share(ctx, 1, 5, 2)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, entities.ErrRecipientNotFound)
		publisher.AssertNotCalled(t, "PublishShared", mock.Anything, mock.Anything)
	})
}

func TestNoteUseCase_VisibleForSearchDedup(t *testing.T) {
	ctx := context.Background()
	notes := new(mockNoteRepository)
	own := &entities.Note{ID: 1, OwnerID: 1}
	notes.On("ListVisible", ctx, int64(1)).Return([]*entities.Note{own, own, {ID: 2, OwnerID: 3}}, nil)

	visible, err := app.NewNoteUseCase(notes, new(mockShareRepository), new(mockTokenService)).VisibleForSearch(ctx, 1)

	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, int64(1), visible[0].ID)
	assert.Equal(t, int64(2), visible[1].ID)
}

func TestNoteUseCase_Metrics(t *testing.T) {
	ctx := context.Background()
	notes := new(mockNoteRepository)
	metrics := new(mockNoteMetrics)
	notes.On("ListByOwner", ctx, int64(1)).Return([]*entities.Note{}, nil)
	notes.On("FindOwned", ctx, int64(9), int64(1)).Return(nil, entities.ErrNoteNotFound)
	metrics.On("NoteOperation", app.OpListOwned, nil).Once()
	metrics.On("NoteOperation", app.OpGetOwned, mock.MatchedBy(func(err error) bool {
		return errors.Is(err, entities.ErrNoteNotFound)
	})).Once()

	useCase := app.NewNoteUseCase(notes, new(mockShareRepository), new(mockTokenService), app.WithNoteMetrics(metrics))
	_, err := useCase.ListOwned(ctx, 1)
	require.NoError(t, err)
	_, err = useCase.GetOwned(ctx, 1, 9)
	require.Error(t, err)

	metrics.AssertExpectations(t)
}
