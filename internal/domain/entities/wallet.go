package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApprovalState is the emergency-unlock state of a wallet. A consumed
// approval collapses back to ApprovalNone.
type ApprovalState string

const (
	ApprovalNone    ApprovalState = "NONE"
	ApprovalPending ApprovalState = "PENDING"
	ApprovalExpired ApprovalState = "EXPIRED"
)

const (
	MinEmergencyContacts = 1
	MaxEmergencyContacts = 2
)

// Wallet is a user's custodial wallet backed by an on-chain multisig contract.
// ApprovalTokenHash and ApprovalExpiresAt are both nil or both set.
type Wallet struct {
	ID                uuid.UUID       `json:"id"`
	UserID            uuid.UUID       `json:"userId"`
	Address           string          `json:"address"`
	Name              string          `json:"name"`
	DailyLimit        decimal.Decimal `json:"dailyLimit"`
	SpendingToday     decimal.Decimal `json:"spendingToday"`
	ApprovalTokenHash *string         `json:"-"`
	ApprovalExpiresAt *time.Time      `json:"approvalExpiresAt,omitempty"`
	EmergencyEmails   []string        `json:"emergencyEmails"`
	Salt              string          `json:"-"`
	DeployTxHash      string          `json:"deployTxHash,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// HasLimit reports whether a daily limit is enforced. Zero means unlimited.
func (w *Wallet) HasLimit() bool {
	return w.DailyLimit.IsPositive()
}

// IsOwnedBy reports whether userID owns the wallet.
func (w *Wallet) IsOwnedBy(userID uuid.UUID) bool {
	return w.UserID == userID
}

// ApprovalState reports the unlock state at now.
func (w *Wallet) ApprovalState(now time.Time) ApprovalState {
	if w.ApprovalTokenHash == nil || w.ApprovalExpiresAt == nil {
		return ApprovalNone
	}
	if now.After(*w.ApprovalExpiresAt) {
		return ApprovalExpired
	}
	return ApprovalPending
}

// RemainingToday is what can still be spent today, nil when unlimited.
func (w *Wallet) RemainingToday() *decimal.Decimal {
	if !w.HasLimit() {
		return nil
	}
	rem := w.DailyLimit.Sub(w.SpendingToday)
	if rem.IsNegative() {
		rem = decimal.Zero
	}
	return &rem
}
