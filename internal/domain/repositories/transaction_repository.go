package repositories

import (
	"context"
	"time"

	"blackwallet.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// TransactionFilter narrows a history listing. Zero times are open bounds.
type TransactionFilter struct {
	From time.Time
	To   time.Time
}

// TransactionRepository is append-only: there is no update or delete.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entities.Transaction) error
	ListByWallet(ctx context.Context, walletID uuid.UUID, filter TransactionFilter) ([]*entities.Transaction, error)
	Summarize(ctx context.Context, walletID uuid.UUID) (entities.BalanceSummary, error)
}
