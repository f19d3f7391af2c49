package repositories

import (
	"context"

	"blackwallet.backend/internal/domain/entities"
	domainRepos "blackwallet.backend/internal/domain/repositories"
	"blackwallet.backend/internal/infrastructure/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionRepository implements the append-only ledger store
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create appends a ledger entry
func (r *TransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	m := &models.Transaction{
		ID:          tx.ID,
		WalletID:    tx.WalletID,
		Type:        string(tx.Type),
		Amount:      tx.Amount,
		Category:    tx.Category,
		Description: tx.Description,
		CreatedAt:   tx.CreatedAt,
	}
	return GetDB(ctx, r.db).Omit("Wallet").Create(m).Error
}

// ListByWallet returns entries newest first, optionally bounded by date.
func (r *TransactionRepository) ListByWallet(ctx context.Context, walletID uuid.UUID, filter domainRepos.TransactionFilter) ([]*entities.Transaction, error) {
	query := GetDB(ctx, r.db).Where("wallet_id = ?", walletID)
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at <= ?", filter.To.UTC())
	}

	var rows []models.Transaction
	if err := query.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	txs := make([]*entities.Transaction, 0, len(rows))
	for i := range rows {
		txs = append(txs, toTransactionEntity(&rows[i]))
	}
	return txs, nil
}

// Summarize folds the wallet's whole ledger. Amounts are summed in decimal
// rather than SQL SUM so the result is exact on every driver.
func (r *TransactionRepository) Summarize(ctx context.Context, walletID uuid.UUID) (entities.BalanceSummary, error) {
	var rows []models.Transaction
	if err := GetDB(ctx, r.db).Select("type", "amount").Where("wallet_id = ?", walletID).Find(&rows).Error; err != nil {
		return entities.BalanceSummary{}, err
	}
	txs := make([]*entities.Transaction, 0, len(rows))
	for i := range rows {
		txs = append(txs, toTransactionEntity(&rows[i]))
	}
	return entities.Summarize(txs), nil
}

func toTransactionEntity(m *models.Transaction) *entities.Transaction {
	return &entities.Transaction{
		ID:          m.ID,
		WalletID:    m.WalletID,
		Type:        entities.TransactionType(m.Type),
		Amount:      m.Amount,
		Category:    m.Category,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}
