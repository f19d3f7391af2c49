package usecases

import (
	"context"

	"blackwallet.backend/internal/domain/entities"
	"blackwallet.backend/internal/domain/repositories"
	"blackwallet.backend/pkg/logger"
	"blackwallet.backend/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContactUsecase manages a user's transfer address book
type ContactUsecase struct {
	contactRepo repositories.ContactRepository
}

// NewContactUsecase creates a new contact usecase
func NewContactUsecase(contactRepo repositories.ContactRepository) *ContactUsecase {
	return &ContactUsecase{contactRepo: contactRepo}
}

// ListContacts returns the user's contacts sorted by name.
func (u *ContactUsecase) ListContacts(ctx context.Context, userID uuid.UUID) ([]*entities.Contact, error) {
	return u.contactRepo.ListByUser(ctx, userID)
}

// SaveContact creates an entry, or renames the one already saved for the
// same address.
func (u *ContactUsecase) SaveContact(ctx context.Context, userID uuid.UUID, input *entities.SaveContactInput) (*entities.Contact, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	contact, err := u.contactRepo.Upsert(ctx, &entities.Contact{
		ID:         utils.GenerateUUIDv7(),
		UserID:     userID,
		Name:       input.Name,
		EthAddress: input.WalletAddress,
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Contact saved",
		zap.String("user_id", userID.String()),
		zap.String("contact_id", contact.ID.String()),
	)
	return contact, nil
}

func (u *ContactUsecase) DeleteContact(ctx context.Context, userID, contactID uuid.UUID) error {
	return u.contactRepo.Delete(ctx, userID, contactID)
}
