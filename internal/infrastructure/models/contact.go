package models

import (
	"time"

	"github.com/google/uuid"
)

type Contact struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_contacts_user_address,priority:1"`
	Name       string    `gorm:"type:varchar(100);not null"`
	EthAddress string    `gorm:"type:varchar(42);not null;uniqueIndex:idx_contacts_user_address,priority:2"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Contact) TableName() string {
	return "contacts"
}
