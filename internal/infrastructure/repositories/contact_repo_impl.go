package repositories

import (
	"context"
	"time"

	"blackwallet.backend/internal/domain/entities"
	domainerrors "blackwallet.backend/internal/domain/errors"
	"blackwallet.backend/internal/infrastructure/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContactRepository implements the address book
type ContactRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db, now: time.Now}
}

// ListByUser returns the user's contacts sorted by name.
func (r *ContactRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Contact, error) {
	var rows []models.Contact
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).Order("name ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Contact, 0, len(rows))
	for i := range rows {
		out = append(out, toContactEntity(&rows[i]))
	}
	return out, nil
}

// Upsert relies on the (user_id, eth_address) unique index; a conflict only
// renames, so the original ID and CreatedAt survive.
func (r *ContactRepository) Upsert(ctx context.Context, c *entities.Contact) (*entities.Contact, error) {
	now := r.now()
	row := &models.Contact{
		ID:         c.ID,
		UserID:     c.UserID,
		Name:       c.Name,
		EthAddress: c.EthAddress,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	db := GetDB(ctx, r.db)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "eth_address"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}

	var stored models.Contact
	if err := db.Where("user_id = ? AND eth_address = ?", c.UserID, c.EthAddress).First(&stored).Error; err != nil {
		return nil, err
	}
	return toContactEntity(&stored), nil
}

func (r *ContactRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Contact{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toContactEntity(m *models.Contact) *entities.Contact {
	return &entities.Contact{
		ID:         m.ID,
		UserID:     m.UserID,
		Name:       m.Name,
		EthAddress: m.EthAddress,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
