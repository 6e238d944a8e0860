package services

import (
	"context"

	"notekeeper/internal/domain/entities"
)

// ShareEventPublisher уведомляет внешние системы о новых доступах.
type ShareEventPublisher interface {
	PublishShared(ctx context.Context, grant *entities.ShareGrant) error
}
