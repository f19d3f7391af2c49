package repositories

import (
	"context"

	"blackwallet.backend/internal/domain/entities"
	domainerrors "blackwallet.backend/internal/domain/errors"
	"blackwallet.backend/internal/infrastructure/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationRepository implements the notification inbox
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entities.Notification) error {
	return GetDB(ctx, r.db).Create(&models.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}).Error
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Notification, error) {
	var rows []models.Notification
	err := GetDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*entities.Notification, 0, len(rows))
	for _, m := range rows {
		out = append(out, &entities.Notification{
			ID:        m.ID,
			UserID:    m.UserID,
			Title:     m.Title,
			Message:   m.Message,
			Type:      entities.NotificationType(m.Type),
			Read:      m.Read,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

// MarkRead is scoped to the owner so users cannot touch each other's inbox.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}
