package entities

import (
	"net/mail"
	"strings"

	domainerrors "blackwallet.backend/internal/domain/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	maxNameLength        = 100
	maxCategoryLength    = 64
	maxDescriptionLength = 500
	minPasswordLength    = 8

	// amounts are stored as numeric(38,18)
	maxAmountScale = 18

	defaultTransferCategory = "Transfer"
)

var maxAmount = decimal.New(1, 20)

// RegisterInput represents input for creating an account
type RegisterInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	EOAAddress string `json:"eoaAddress"`
}

func (in *RegisterInput) Validate() error {
	v := domainerrors.ValidationErrors{}
	in.Email = normalizeEmail(in.Email)
	if !validEmail(in.Email) {
		v.Add("email", "must be a valid email address")
	}
	if len(in.Password) < minPasswordLength {
		v.Add("password", "must be at least 8 characters")
	}
	if !common.IsHexAddress(in.EOAAddress) {
		v.Add("eoaAddress", "must be a 0x-prefixed 20-byte hex address")
	}
	return v.OrNil()
}

// LoginInput represents input for user login
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *LoginInput) Validate() error {
	v := domainerrors.ValidationErrors{}
	in.Email = normalizeEmail(in.Email)
	if in.Email == "" {
		v.Add("email", "is required")
	}
	if in.Password == "" {
		v.Add("password", "is required")
	}
	return v.OrNil()
}

// CreateWalletInput is the request to provision a new multisig wallet.
type CreateWalletInput struct {
	Name            string          `json:"name"`
	DailyLimit      decimal.Decimal `json:"dailyLimit"`
	EmergencyEmails []string        `json:"emergencyEmails"`
}

func (in *CreateWalletInput) Validate() error {
	v := domainerrors.ValidationErrors{}
	in.Name = strings.TrimSpace(in.Name)
	validateName(v, in.Name)
	validateLimit(v, in.DailyLimit)
	in.EmergencyEmails = validateContacts(v, in.EmergencyEmails)
	return v.OrNil()
}

// UpdateProfileInput changes wallet settings. Nil fields are left unchanged.
type UpdateProfileInput struct {
	Name            *string          `json:"name"`
	DailyLimit      *decimal.Decimal `json:"dailyLimit"`
	EmergencyEmails []string         `json:"emergencyEmails"`
}

func (in *UpdateProfileInput) Validate() error {
	v := domainerrors.ValidationErrors{}
	if in.Name == nil && in.DailyLimit == nil && in.EmergencyEmails == nil {
		v.Add("body", "at least one field must be provided")
	}
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
		validateName(v, trimmed)
	}
	if in.DailyLimit != nil {
		validateLimit(v, *in.DailyLimit)
	}
	if in.EmergencyEmails != nil {
		in.EmergencyEmails = validateContacts(v, in.EmergencyEmails)
	}
	return v.OrNil()
}

// DepositInput credits a wallet.
type DepositInput struct {
	WalletID uuid.UUID       `json:"walletId"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
}

func (in *DepositInput) Validate() error {
	v := domainerrors.ValidationErrors{}
	validateWalletID(v, in.WalletID)
	validateAmount(v, in.Amount)
	in.Category = strings.TrimSpace(in.Category)
	validateCategory(v, in.Category)
	return v.OrNil()
}

// WithdrawInput debits a wallet subject to the daily limit.
type WithdrawInput struct {
	WalletID    uuid.UUID       `json:"walletId"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

func (in *WithdrawInput) Validate() error {
	v := domainerrors.ValidationErrors{}
	validateWalletID(v, in.WalletID)
	validateAmount(v, in.Amount)
	in.Category = strings.TrimSpace(in.Category)
	validateCategory(v, in.Category)
	if len(in.Description) > maxDescriptionLength {
		v.Add("description", "must be at most 500 characters")
	}
	return v.OrNil()
}

// TransferInput sends funds to an external address. It is booked as a
// withdrawal and goes through the same balance and daily limit checks.
type TransferInput struct {
	WalletID           uuid.UUID       `json:"walletId"`
	DestinationAddress string          `json:"destinationAddress"`
	Amount             decimal.Decimal `json:"amount"`
	Category           string          `json:"category"`
	Description        string          `json:"description"`
}

func (in *TransferInput) Validate() error {
	v := domainerrors.ValidationErrors{}
	validateWalletID(v, in.WalletID)
	validateAmount(v, in.Amount)
	in.DestinationAddress = strings.TrimSpace(in.DestinationAddress)
	if !common.IsHexAddress(in.DestinationAddress) {
		v.Add("destinationAddress", "must be a 0x-prefixed 20-byte hex address")
	}
	in.Category = strings.TrimSpace(in.Category)
	if in.Category == "" {
		in.Category = defaultTransferCategory
	}
	validateCategory(v, in.Category)
	if len(in.Description) > maxDescriptionLength {
		v.Add("description", "must be at most 500 characters")
	}
	return v.OrNil()
}

// Destination returns the checksummed destination address.
func (in *TransferInput) Destination() string {
	return common.HexToAddress(in.DestinationAddress).Hex()
}

// Withdrawal is the ledger entry a transfer books.
func (in *TransferInput) Withdrawal() *WithdrawInput {
	description := in.Description
	if description == "" {
		description = "Transfer to " + in.Destination()
	}
	return &WithdrawInput{
		WalletID:    in.WalletID,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: description,
	}
}

// SaveContactInput adds an address-book entry or renames the existing entry
// for the same address.
type SaveContactInput struct {
	Name          string `json:"name"`
	WalletAddress string `json:"walletAddress"`
}

func (in *SaveContactInput) Validate() error {
	v := domainerrors.ValidationErrors{}
	in.Name = strings.TrimSpace(in.Name)
	validateName(v, in.Name)
	in.WalletAddress = strings.TrimSpace(in.WalletAddress)
	if !common.IsHexAddress(in.WalletAddress) {
		v.Add("walletAddress", "must be a 0x-prefixed 20-byte hex address")
	} else {
		in.WalletAddress = common.HexToAddress(in.WalletAddress).Hex()
	}
	return v.OrNil()
}

// RewardInput credits yield to a wallet.
type RewardInput struct {
	WalletID uuid.UUID       `json:"walletId"`
	Amount   decimal.Decimal `json:"amount"`
}

func (in *RewardInput) Validate() error {
	v := domainerrors.ValidationErrors{}
	validateWalletID(v, in.WalletID)
	validateAmount(v, in.Amount)
	return v.OrNil()
}

// ApproveInput presents an emergency approval code.
type ApproveInput struct {
	WalletID     uuid.UUID `json:"walletId" form:"walletId"`
	ApprovalCode string    `json:"approvalCode" form:"code"`
}

func (in *ApproveInput) Validate() error {
	v := domainerrors.ValidationErrors{}
	validateWalletID(v, in.WalletID)
	in.ApprovalCode = strings.TrimSpace(in.ApprovalCode)
	if in.ApprovalCode == "" {
		v.Add("approvalCode", "is required")
	}
	return v.OrNil()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validateName(v domainerrors.ValidationErrors, name string) {
	if name == "" {
		v.Add("name", "is required")
	} else if len(name) > maxNameLength {
		v.Add("name", "must be at most 100 characters")
	}
}

func validateLimit(v domainerrors.ValidationErrors, limit decimal.Decimal) {
	if limit.IsNegative() {
		v.Add("dailyLimit", "must not be negative")
	} else if limit.Exponent() < -maxAmountScale {
		v.Add("dailyLimit", "must have at most 18 decimal places")
	} else if limit.GreaterThanOrEqual(maxAmount) {
		v.Add("dailyLimit", "is too large")
	}
}

func validateAmount(v domainerrors.ValidationErrors, amount decimal.Decimal) {
	if !amount.IsPositive() {
		v.Add("amount", "must be greater than zero")
	} else if amount.Exponent() < -maxAmountScale {
		v.Add("amount", "must have at most 18 decimal places")
	} else if amount.GreaterThanOrEqual(maxAmount) {
		v.Add("amount", "is too large")
	}
}

func validateCategory(v domainerrors.ValidationErrors, category string) {
	if category == "" {
		v.Add("category", "is required")
	} else if len(category) > maxCategoryLength {
		v.Add("category", "must be at most 64 characters")
	}
}

func validateWalletID(v domainerrors.ValidationErrors, id uuid.UUID) {
	if id == uuid.Nil {
		v.Add("walletId", "is required")
	}
}

// validateContacts normalizes and checks the 1..2 emergency contact rule.
func validateContacts(v domainerrors.ValidationErrors, emails []string) []string {
	out := make([]string, 0, len(emails))
	seen := map[string]bool{}
	for _, e := range emails {
		e = normalizeEmail(e)
		if !validEmail(e) {
			v.Add("emergencyEmails", "must contain valid email addresses")
			continue
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	if len(out) < MinEmergencyContacts || len(out) > MaxEmergencyContacts {
		v.Add("emergencyEmails", "must contain 1 or 2 distinct addresses")
	}
	return out
}
