package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"notekeeper/internal/domain/entities"
	"notekeeper/internal/ports/repositories"
	"notekeeper/pkg/logger"
)

const (
	lockOwnedNoteQuery = `
        SELECT id
        FROM notes
        WHERE id = $1 AND user_id = $2
        FOR SHARE
    `
	recipientExistsQuery = `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`
	insertGrantQuery     = `
        INSERT INTO share_grants (note_id, recipient_id, sharer_id, shared_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (note_id, recipient_id) DO UPDATE SET note_id = EXCLUDED.note_id
        RETURNING id, note_id, recipient_id, sharer_id, shared_at
    `
)

// ShareRepository реализует интерфейс repositories.ShareRepository для работы с Postgres.
type ShareRepository struct {
	pool PgxPoolInterface
}

var _ repositories.ShareRepository = (*ShareRepository)(nil)

// NewShareRepository создает новый экземпляр репозитория доступов.
func NewShareRepository(pool PgxPoolInterface) *ShareRepository {
	return &ShareRepository{pool: pool}
}

// Grant выдает доступ в одной транзакции. Заметка блокируется FOR SHARE,
// чтобы владелец не удалил ее между проверкой и вставкой.
func (r *ShareRepository) Grant(ctx context.Context, grant *entities.ShareGrant) (*entities.ShareGrant, error) {
	log := logger.Log(ctx).With(
		zap.String("repository", "share"),
		zap.String("method", "Grant"),
		zap.Int64("noteID", grant.NoteID),
		zap.Int64("recipientID", grant.RecipientID),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		log.Error(ctx, "error starting transaction", zap.Error(err))
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	result, err := grantInTx(ctx, tx, grant)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Warn(ctx, "error rolling back transaction", zap.Error(rbErr))
		}
		if errors.Is(err, entities.ErrNoteNotFound) || errors.Is(err, entities.ErrRecipientNotFound) {
			log.Debug(ctx, "share rejected", zap.Error(err))
		} else {
			log.Error(ctx, "error granting share", zap.Error(err))
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error(ctx, "error committing transaction", zap.Error(err))
		return nil, fmt.Errorf("error committing share: %w", err)
	}

	return result, nil
}

func grantInTx(ctx context.Context, tx pgx.Tx, grant *entities.ShareGrant) (*entities.ShareGrant, error) {
	var lockedID int64
	if err := tx.QueryRow(ctx, lockOwnedNoteQuery, grant.NoteID, grant.SharerID).Scan(&lockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrNoteNotFound
		}
		return nil, fmt.Errorf("error locking note: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, recipientExistsQuery, grant.RecipientID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("error checking recipient: %w", err)
	}
	if !exists {
		return nil, entities.ErrRecipientNotFound
	}

	var created entities.ShareGrant
	err := tx.QueryRow(ctx, insertGrantQuery,
		grant.NoteID,
		grant.RecipientID,
		grant.SharerID,
		grant.SharedAt,
	).Scan(
		&created.ID,
		&created.NoteID,
		&created.RecipientID,
		&created.SharerID,
		&created.SharedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("error inserting share grant: %w", err)
	}

	return &created, nil
}
