package repositories

import (
	"context"
	"errors"
	"time"

	"blackwallet.backend/internal/domain/entities"
	domainerrors "blackwallet.backend/internal/domain/errors"
	"blackwallet.backend/internal/infrastructure/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalletRepository implements wallet data operations
type WalletRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create creates a new wallet
func (r *WalletRepository) Create(ctx context.Context, wallet *entities.Wallet) error {
	m := toWalletModel(wallet)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a wallet by ID, locking the row when ctx asks for it.
func (r *WalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	var m models.Wallet
	if err := lockedDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrWalletNotFound
		}
		return nil, err
	}
	return toWalletEntity(&m), nil
}

// GetPrimaryByUserID returns the user's first-created wallet.
func (r *WalletRepository) GetPrimaryByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	var m models.Wallet
	err := GetDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrWalletNotFound
		}
		return nil, err
	}
	return toWalletEntity(&m), nil
}

// ListByUserID lists a user's wallets, oldest first.
func (r *WalletRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error) {
	var rows []models.Wallet
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	wallets := make([]*entities.Wallet, 0, len(rows))
	for i := range rows {
		wallets = append(wallets, toWalletEntity(&rows[i]))
	}
	return wallets, nil
}

// UpdateProfile writes name, limit and contacts. Spending and approval
// columns are never touched here.
func (r *WalletRepository) UpdateProfile(ctx context.Context, wallet *entities.Wallet) error {
	result := GetDB(ctx, r.db).Model(&models.Wallet{}).Where("id = ?", wallet.ID).Updates(map[string]interface{}{
		"name":             wallet.Name,
		"daily_limit":      wallet.DailyLimit,
		"emergency_emails": pq.StringArray(wallet.EmergencyEmails),
		"updated_at":       r.now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrWalletNotFound
	}
	return nil
}

// CompareAndSwapSpending moves spending_today from expected to next.
func (r *WalletRepository) CompareAndSwapSpending(ctx context.Context, id uuid.UUID, expected, next decimal.Decimal) error {
	result := GetDB(ctx, r.db).Model(&models.Wallet{}).
		Where("id = ? AND spending_today = ?", id, expected).
		Updates(map[string]interface{}{
			"spending_today": next,
			"updated_at":     r.now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConcurrentUpdate
	}
	return nil
}

// SetApproval stores a pending approval, replacing any previous one.
func (r *WalletRepository) SetApproval(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	result := GetDB(ctx, r.db).Model(&models.Wallet{}).Where("id = ?", id).Updates(map[string]interface{}{
		"approval_token_hash": tokenHash,
		"approval_expires_at": expiresAt.UTC(),
		"updated_at":          r.now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrWalletNotFound
	}
	return nil
}

// ResetSpending zeroes the counter and clears the approval pair together.
func (r *WalletRepository) ResetSpending(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Model(&models.Wallet{}).Where("id = ?", id).Updates(map[string]interface{}{
		"spending_today":      decimal.Zero,
		"approval_token_hash": nil,
		"approval_expires_at": nil,
		"updated_at":          r.now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrWalletNotFound
	}
	return nil
}

// ResetAllSpending is the day rollover. Approvals are left alone.
func (r *WalletRepository) ResetAllSpending(ctx context.Context) (int64, error) {
	result := GetDB(ctx, r.db).Model(&models.Wallet{}).
		Where("spending_today <> ?", decimal.Zero).
		Updates(map[string]interface{}{
			"spending_today": decimal.Zero,
			"updated_at":     r.now(),
		})
	return result.RowsAffected, result.Error
}

func toWalletModel(w *entities.Wallet) *models.Wallet {
	return &models.Wallet{
		ID:                w.ID,
		UserID:            w.UserID,
		Address:           w.Address,
		Name:              w.Name,
		DailyLimit:        w.DailyLimit,
		SpendingToday:     w.SpendingToday,
		ApprovalTokenHash: w.ApprovalTokenHash,
		ApprovalExpiresAt: w.ApprovalExpiresAt,
		EmergencyEmails:   pq.StringArray(w.EmergencyEmails),
		Salt:              w.Salt,
		DeployTxHash:      w.DeployTxHash,
		CreatedAt:         w.CreatedAt,
		UpdatedAt:         w.UpdatedAt,
	}
}

func toWalletEntity(m *models.Wallet) *entities.Wallet {
	w := &entities.Wallet{
		ID:              m.ID,
		UserID:          m.UserID,
		Address:         m.Address,
		Name:            m.Name,
		DailyLimit:      m.DailyLimit,
		SpendingToday:   m.SpendingToday,
		EmergencyEmails: []string(m.EmergencyEmails),
		Salt:            m.Salt,
		DeployTxHash:    m.DeployTxHash,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	// a half-set pair is treated as no approval
	if m.ApprovalTokenHash != nil && m.ApprovalExpiresAt != nil {
		hash := *m.ApprovalTokenHash
		exp := m.ApprovalExpiresAt.UTC()
		w.ApprovalTokenHash = &hash
		w.ApprovalExpiresAt = &exp
	}
	return w
}
