package repositories

import (
	"context"
	"time"

	"notekeeper/internal/domain/entities"
)

// NoteRepository определяет операции над заметками.
// Каждый метод, кроме Create, принимает явный предикат владельца ownerID или
// получателя userID; хранилище не знает о токенах.
type NoteRepository interface {
	Create(ctx context.Context, note *entities.Note) (*entities.Note, error)

	// FindOwned возвращает entities.ErrNoteNotFound, если заметки нет или она принадлежит другому.
	FindOwned(ctx context.Context, noteID, ownerID int64) (*entities.Note, error)

	ListByOwner(ctx context.Context, ownerID int64) ([]*entities.Note, error)

	// UpdateOwned заменяет заголовок и текст; updated_at не становится меньше created_at.
	UpdateOwned(ctx context.Context, noteID, ownerID int64, title, content string, now time.Time) (*entities.Note, error)

	DeleteOwned(ctx context.Context, noteID, ownerID int64) error

	// ListVisible возвращает объединение собственных и выданных userID заметок без повторов.
	ListVisible(ctx context.Context, userID int64) ([]*entities.Note, error)
}
