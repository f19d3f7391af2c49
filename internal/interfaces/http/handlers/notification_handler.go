package handlers

import (
	"context"
	"net/http"

	domainerrors "blackwallet.backend/internal/domain/errors"
	"blackwallet.backend/internal/interfaces/http/response"
	"blackwallet.backend/internal/usecases"
	"blackwallet.backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type notificationService interface {
	List(ctx context.Context, userID uuid.UUID, page, limit int) (*usecases.NotificationPage, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
}

// NotificationHandler serves the user's notification inbox
type NotificationHandler struct {
	notificationUsecase notificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationUsecase notificationService) *NotificationHandler {
	return &NotificationHandler{notificationUsecase: notificationUsecase}
}

// List returns the caller's notifications, newest first
// GET /api/v1/notifications?page=&limit=
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var params utils.PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Error(c, domainerrors.BadRequest("page and limit must be integers"))
		return
	}

	page, err := h.notificationUsecase.List(c.Request.Context(), userID, params.Page, params.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, page)
}

// MarkRead marks one notification as read
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.ValidationErrors{"id": "must be a notification UUID"})
		return
	}

	if err := h.notificationUsecase.MarkRead(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Notification marked as read"})
}
