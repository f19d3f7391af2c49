package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_notifications_user_created,priority:1"`
	Title     string    `gorm:"type:varchar(200);not null"`
	Message   string    `gorm:"type:text;not null"`
	Type      string    `gorm:"type:varchar(40);not null"`
	Read      bool      `gorm:"column:is_read;not null;default:false"`
	CreatedAt time.Time `gorm:"index:idx_notifications_user_created,priority:2"`
}

// All lists every model for AutoMigrate, parents first.
func All() []interface{} {
	return []interface{}{&User{}, &Wallet{}, &Transaction{}, &Notification{}, &Contact{}}
}
