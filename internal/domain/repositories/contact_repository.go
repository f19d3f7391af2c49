package repositories

import (
	"context"

	"blackwallet.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// ContactRepository defines address-book operations. All calls are scoped
// to the owning user.
type ContactRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Contact, error)
	// Upsert inserts the contact or, when the user already has an entry for
	// the address, renames it. The stored row is returned.
	Upsert(ctx context.Context, c *entities.Contact) (*entities.Contact, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
