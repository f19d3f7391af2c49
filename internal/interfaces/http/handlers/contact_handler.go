package handlers

import (
	"context"
	"net/http"

	"blackwallet.backend/internal/domain/entities"
	domainerrors "blackwallet.backend/internal/domain/errors"
	"blackwallet.backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type contactService interface {
	ListContacts(ctx context.Context, userID uuid.UUID) ([]*entities.Contact, error)
	SaveContact(ctx context.Context, userID uuid.UUID, input *entities.SaveContactInput) (*entities.Contact, error)
	DeleteContact(ctx context.Context, userID, contactID uuid.UUID) error
}

// ContactHandler serves the transfer address book
type ContactHandler struct {
	contactUsecase contactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactUsecase contactService) *ContactHandler {
	return &ContactHandler{contactUsecase: contactUsecase}
}

// List returns the caller's contacts
// GET /api/v1/contacts
func (h *ContactHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	contacts, err := h.contactUsecase.ListContacts(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"contacts": contacts})
}

// Save adds a contact or renames the one saved for the same address
// POST /api/v1/contacts
func (h *ContactHandler) Save(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input entities.SaveContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	contact, err := h.contactUsecase.SaveContact(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"success": true,
		"message": "Contact saved successfully",
		"contact": contact,
	})
}

// Delete removes a contact
// DELETE /api/v1/contacts/:id
func (h *ContactHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.ValidationErrors{"id": "must be a contact UUID"})
		return
	}

	if err := h.contactUsecase.DeleteContact(c.Request.Context(), userID, contactID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Contact deleted"})
}
