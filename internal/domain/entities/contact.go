package entities

import (
	"time"

	"github.com/google/uuid"
)

// Contact is an address-book entry: a named destination for transfers.
// EthAddress is stored checksummed and is unique per user.
type Contact struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"-"`
	Name       string    `json:"name"`
	EthAddress string    `json:"ethAddress"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
