package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Wallet struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	Address           string          `gorm:"type:varchar(42);not null;uniqueIndex"`
	Name              string          `gorm:"type:varchar(100);not null"`
	DailyLimit        decimal.Decimal `gorm:"type:numeric(38,18);not null;default:0"`
	SpendingToday     decimal.Decimal `gorm:"type:numeric(38,18);not null;default:0"`
	ApprovalTokenHash *string         `gorm:"type:varchar(64)"`
	ApprovalExpiresAt *time.Time
	EmergencyEmails   pq.StringArray `gorm:"type:text[];not null"`
	Salt              string         `gorm:"type:varchar(80);not null"`
	DeployTxHash      string         `gorm:"type:varchar(66)"`
	CreatedAt         time.Time      `gorm:"index"`
	UpdatedAt         time.Time
}

// Transaction rows are append-only.
type Transaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	WalletID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_transactions_wallet_created,priority:1"`
	Type        string          `gorm:"type:varchar(20);not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	Category    string          `gorm:"type:varchar(64);not null"`
	Description string          `gorm:"type:varchar(500)"`
	CreatedAt   time.Time       `gorm:"index:idx_transactions_wallet_created,priority:2"`

	Wallet Wallet `gorm:"foreignKey:WalletID;constraint:OnDelete:RESTRICT"`
}

func (Transaction) TableName() string {
	return "transactions"
}
