package usecases

import (
	"context"
	"time"

	"blackwallet.backend/internal/domain/entities"
	"blackwallet.backend/internal/domain/repositories"
	"blackwallet.backend/pkg/logger"
	"blackwallet.backend/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier records user-facing events. Delivery is best effort: a failed
// write is logged and never fails the operation that produced the event.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind entities.NotificationType, title, message string)
}

// NotificationUsecase handles the notification inbox
type NotificationUsecase struct {
	notificationRepo repositories.NotificationRepository
	now              func() time.Time
}

// NotificationPage is one page of a user's inbox
type NotificationPage struct {
	Items  []*entities.Notification `json:"items"`
	Unread int64                    `json:"unread"`
	Page   int                      `json:"page"`
	Limit  int                      `json:"limit"`
}

// NewNotificationUsecase creates a new notification usecase
func NewNotificationUsecase(notificationRepo repositories.NotificationRepository) *NotificationUsecase {
	return &NotificationUsecase{
		notificationRepo: notificationRepo,
		now:              time.Now,
	}
}

func (u *NotificationUsecase) Notify(ctx context.Context, userID uuid.UUID, kind entities.NotificationType, title, message string) {
	n := &entities.Notification{
		ID:        utils.GenerateUUIDv7(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      kind,
		CreatedAt: u.now(),
	}
	if err := u.notificationRepo.Create(ctx, n); err != nil {
		logger.Warn(ctx, "Failed to store notification",
			zap.String("user_id", userID.String()),
			zap.String("type", string(kind)),
			zap.Error(err),
		)
	}
}

// List returns the newest notifications first along with the unread count.
func (u *NotificationUsecase) List(ctx context.Context, userID uuid.UUID, page, limit int) (*NotificationPage, error) {
	p := utils.GetPaginationParams(page, limit)

	items, err := u.notificationRepo.ListByUser(ctx, userID, p.Limit, p.CalculateOffset())
	if err != nil {
		return nil, err
	}
	unread, err := u.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &NotificationPage{Items: items, Unread: unread, Page: p.Page, Limit: p.Limit}, nil
}

// MarkRead marks one of the user's notifications as read.
func (u *NotificationUsecase) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return u.notificationRepo.MarkRead(ctx, userID, id)
}
