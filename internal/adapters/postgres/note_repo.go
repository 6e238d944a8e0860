package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"notekeeper/internal/domain/entities"
	"notekeeper/internal/ports/repositories"
	"notekeeper/pkg/logger"
)

var noteColumns = []string{"id", "user_id", "title", "content", "created_at", "updated_at"}

// NoteRepository реализует интерфейс repositories.NoteRepository для работы с Postgres.
type NoteRepository struct {
	pool PgxPoolInterface
}

var _ repositories.NoteRepository = (*NoteRepository)(nil)

// NewNoteRepository создает новый экземпляр репозитория заметок.
func NewNoteRepository(pool PgxPoolInterface) *NoteRepository {
	return &NoteRepository{pool: pool}
}

// Create сохраняет новую заметку.
func (r *NoteRepository) Create(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("repository", "note"), zap.String("method", "Create"))

	query := `
        INSERT INTO notes (user_id, title, content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, user_id, title, content, created_at, updated_at
    `

	var created entities.Note
	err := scanNote(r.pool.QueryRow(ctx, query,
		note.OwnerID,
		note.Title,
		note.Content,
		note.CreatedAt,
		note.UpdatedAt,
	), &created)
	if err != nil {
		log.Error(ctx, "error creating note", zap.Error(err))
		return nil, fmt.Errorf("error creating note: %w", err)
	}

	return &created, nil
}

// FindOwned находит заметку noteID, принадлежащую ownerID.
func (r *NoteRepository) FindOwned(ctx context.Context, noteID, ownerID int64) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("repository", "note"), zap.String("method", "FindOwned"))

	query := `
        SELECT id, user_id, title, content, created_at, updated_at
        FROM notes
        WHERE id = $1 AND user_id = $2
    `

	var note entities.Note
	if err := scanNote(r.pool.QueryRow(ctx, query, noteID, ownerID), &note); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "note not found", zap.Int64("noteID", noteID), zap.Int64("ownerID", ownerID))
			return nil, entities.ErrNoteNotFound
		}
		log.Error(ctx, "error finding note", zap.Error(err))
		return nil, fmt.Errorf("error querying note: %w", err)
	}

	return &note, nil
}

// ListByOwner возвращает заметки владельца в порядке создания.
func (r *NoteRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*entities.Note, error) {
	builder := squirrel.
		Select(noteColumns...).
		From("notes").
		Where(squirrel.Eq{"user_id": ownerID}).
		OrderBy("id").
		PlaceholderFormat(squirrel.Dollar)

	return r.queryNotes(ctx, "ListByOwner", builder)
}

// ListVisible возвращает собственные заметки userID и заметки, к которым ему выдан доступ.
// Условие OR по одной таблице исключает повторы без DISTINCT.
func (r *NoteRepository) ListVisible(ctx context.Context, userID int64) ([]*entities.Note, error) {
	builder := squirrel.
		Select(noteColumns...).
		From("notes").
		Where(squirrel.Or{
			squirrel.Eq{"user_id": userID},
			squirrel.Expr("id IN (SELECT note_id FROM share_grants WHERE recipient_id = ?)", userID),
		}).
		OrderBy("id").
		PlaceholderFormat(squirrel.Dollar)

	return r.queryNotes(ctx, "ListVisible", builder)
}

// UpdateOwned заменяет заголовок и текст заметки владельца одним запросом.
func (r *NoteRepository) UpdateOwned(
	ctx context.Context,
	noteID, ownerID int64,
	title, content string,
	now time.Time,
) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("repository", "note"), zap.String("method", "UpdateOwned"))

	query := `
        UPDATE notes
        SET title = $3, content = $4, updated_at = GREATEST(created_at, $5)
        WHERE id = $1 AND user_id = $2
        RETURNING id, user_id, title, content, created_at, updated_at
    `

	var note entities.Note
	if err := scanNote(r.pool.QueryRow(ctx, query, noteID, ownerID, title, content, now), &note); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "note not found for update", zap.Int64("noteID", noteID), zap.Int64("ownerID", ownerID))
			return nil, entities.ErrNoteNotFound
		}
		log.Error(ctx, "error updating note", zap.Error(err))
		return nil, fmt.Errorf("error updating note: %w", err)
	}

	return &note, nil
}

// DeleteOwned удаляет заметку владельца; доступы удаляются каскадно.
func (r *NoteRepository) DeleteOwned(ctx context.Context, noteID, ownerID int64) error {
	log := logger.Log(ctx).With(zap.String("repository", "note"), zap.String("method", "DeleteOwned"))

	query := `
        DELETE FROM notes
        WHERE id = $1 AND user_id = $2
    `

	result, err := r.pool.Exec(ctx, query, noteID, ownerID)
	if err != nil {
		log.Error(ctx, "error deleting note", zap.Error(err))
		return fmt.Errorf("error deleting note: %w", err)
	}

	if result.RowsAffected() == 0 {
		log.Debug(ctx, "note not found for deletion", zap.Int64("noteID", noteID), zap.Int64("ownerID", ownerID))
		return entities.ErrNoteNotFound
	}

	return nil
}

func (r *NoteRepository) queryNotes(ctx context.Context, method string, builder squirrel.SelectBuilder) ([]*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("repository", "note"), zap.String("method", method))

	query, args, err := builder.ToSql()
	if err != nil {
		log.Error(ctx, "error building query", zap.Error(err))
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		log.Error(ctx, "error querying notes", zap.Error(err))
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	notes := make([]*entities.Note, 0)
	for rows.Next() {
		var note entities.Note
		if err := scanNote(rows, &note); err != nil {
			log.Error(ctx, "error scanning note", zap.Error(err))
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, &note)
	}

	if err := rows.Err(); err != nil {
		log.Error(ctx, "error iterating notes", zap.Error(err))
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}

	return notes, nil
}

func scanNote(row pgx.Row, note *entities.Note) error {
	return row.Scan(
		&note.ID,
		&note.OwnerID,
		&note.Title,
		&note.Content,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
}
