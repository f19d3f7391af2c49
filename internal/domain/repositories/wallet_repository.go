package repositories

import (
	"context"
	"time"

	"blackwallet.backend/internal/domain/entities"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletRepository defines wallet data operations
type WalletRepository interface {
	Create(ctx context.Context, wallet *entities.Wallet) error
	// GetByID honours the lock marker set by UnitOfWork.WithLock.
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error)
	// GetPrimaryByUserID returns the user's oldest wallet.
	GetPrimaryByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error)
	UpdateProfile(ctx context.Context, wallet *entities.Wallet) error

	// CompareAndSwapSpending sets spending_today to next only if it still
	// equals expected. Returns ErrConcurrentUpdate on a miss.
	CompareAndSwapSpending(ctx context.Context, id uuid.UUID, expected, next decimal.Decimal) error
	SetApproval(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error
	// ResetSpending zeroes spending_today and clears the approval pair.
	ResetSpending(ctx context.Context, id uuid.UUID) error
	// ResetAllSpending zeroes every non-zero spending_today and returns the
	// number of wallets touched.
	ResetAllSpending(ctx context.Context) (int64, error)
}
