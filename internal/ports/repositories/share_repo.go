package repositories

import (
	"context"

	"notekeeper/internal/domain/entities"
)

// ShareRepository управляет выдачей доступа к заметкам.
type ShareRepository interface {
	// Grant атомарно проверяет владение заметкой и существование получателя,
	// затем создает доступ. Повторная выдача той же пары возвращает существующую запись.
	Grant(ctx context.Context, grant *entities.ShareGrant) (*entities.ShareGrant, error)
}
