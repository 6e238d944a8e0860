package app

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"notekeeper/internal/domain/entities"
	"notekeeper/internal/domain/services"
	"notekeeper/internal/ports/api"
	"notekeeper/pkg/logger"
)

// VisibilityProvider отдает множество заметок, видимых пользователю при поиске.
type VisibilityProvider interface {
	VisibleForSearch(ctx context.Context, userID int64) ([]*entities.Note, error)
}

// SearchUseCaseImpl ищет подстроку в заголовке и тексте видимых заметок.
type SearchUseCaseImpl struct {
	visibility VisibilityProvider
}

var _ api.SearchUseCase = (*SearchUseCaseImpl)(nil)

// NewSearchUseCase создает новый экземпляр поиска.
func NewSearchUseCase(visibility VisibilityProvider) *SearchUseCaseImpl {
	return &SearchUseCaseImpl{visibility: visibility}
}

// Search возвращает заметки, в заголовке или тексте которых есть query.
// Сравнение учитывает регистр; результат упорядочен по id, пустой результат не ошибка.
func (s *SearchUseCaseImpl) Search(ctx context.Context, userID int64, query string) ([]*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "Search"), zap.Int64("userID", userID))

	if strings.TrimSpace(query) == "" {
		log.Debug(ctx, "empty search query")
		return nil, services.ErrEmptyQuery
	}

	visible, err := s.visibility.VisibleForSearch(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("searching notes: %w", err)
	}

	seen := make(map[int64]struct{}, len(visible))
	matches := make([]*entities.Note, 0)
	for _, note := range visible {
		if _, ok := seen[note.ID]; ok {
			continue
		}
		if strings.Contains(note.Title, query) || strings.Contains(note.Content, query) {
			seen[note.ID] = struct{}{}
			matches = append(matches, note)
		}
	}

	slices.SortStableFunc(matches, func(a, b *entities.Note) int {
		return cmp.Compare(a.ID, b.ID)
	})

	log.Debug(ctx, "search finished", zap.Int("matches", len(matches)))
	return matches, nil
}
