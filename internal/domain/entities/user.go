package entities

import (
	"time"

	"github.com/google/uuid"
)

// User is an account holder. EOAAddress is the single owner of every
// multisig wallet the user creates.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	EOAAddress   string    `json:"eoaAddress"`
	Onboarded    bool      `json:"onboarded"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         *User     `json:"user"`
}
