package repositories

import (
	"context"

	"blackwallet.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// NotificationRepository defines notification inbox operations
type NotificationRepository interface {
	Create(ctx context.Context, n *entities.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}
