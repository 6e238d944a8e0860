package api

import (
	"context"

	"notekeeper/internal/domain/entities"
)

// IdentityResolver извлекает идентичность из bearer-токена.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (int64, error)
}

// NoteUseCase - операции над заметками в рамках идентичности userID.
type NoteUseCase interface {
	IdentityResolver

	ListOwned(ctx context.Context, userID int64) ([]*entities.Note, error)

	GetOwned(ctx context.Context, userID, noteID int64) (*entities.Note, error)

	Create(ctx context.Context, userID int64, title, content string) (*entities.Note, error)

	Update(ctx context.Context, userID, noteID int64, title, content string) (*entities.Note, error)

	Delete(ctx context.Context, userID, noteID int64) error

	Share(ctx context.Context, sharerID, noteID, recipientID int64) (*entities.ShareGrant, error)

	VisibleForSearch(ctx context.Context, userID int64) ([]*entities.Note, error)
}

// SearchUseCase - поиск по видимым заметкам.
type SearchUseCase interface {
	Search(ctx context.Context, userID int64, query string) ([]*entities.Note, error)
}
