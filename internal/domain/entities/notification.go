package entities

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies user-facing events.
type NotificationType string

const (
	NotificationDepositSuccess    NotificationType = "DEPOSIT_SUCCESS"
	NotificationWithdrawalSuccess NotificationType = "WITHDRAWAL_SUCCESS"
	NotificationDailyLimitAlert   NotificationType = "DAILY_LIMIT_ALERT"
	NotificationEmergencyApproval NotificationType = "EMERGENCY_APPROVAL"
	NotificationRewardReceived    NotificationType = "REWARD_RECEIVED"
	NotificationWalletCreated     NotificationType = "WALLET_CREATED"
)

// Notification is an event delivered to a user's inbox.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"userId"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}
