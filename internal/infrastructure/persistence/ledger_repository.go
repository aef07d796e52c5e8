package persistence

import (
	"context"

	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLedgerRepository implements LedgerRepository using GORM.
// It only inserts and reads; there is no update or delete path.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Append inserts the entry and copies the generated ID back
func (r *GormLedgerRepository) Append(ctx context.Context, entry *inventory.LedgerEntry) error {
	model := models.LedgerEntryModelFromDomain(entry)
	model.ID = 0
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	entry.ID = model.ID
	return nil
}

// ListByItem returns one keyset page of entries, newest first
func (r *GormLedgerRepository) ListByItem(ctx context.Context, itemID uuid.UUID, beforeID int64, limit int) ([]inventory.LedgerEntry, error) {
	query := r.db.WithContext(ctx).Where("item_id = ?", itemID)
	if beforeID > 0 {
		query = query.Where("id < ?", beforeID)
	}
	var rows []models.LedgerEntryModel
	if err := query.Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	entries := make([]inventory.LedgerEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

// CountByItem counts entries for an item
func (r *GormLedgerRepository) CountByItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).Where("item_id = ?", itemID).Count(&count).Error
	return count, translateError(err)
}

// ListByShipmentItem returns entries referencing a shipment line, oldest first
func (r *GormLedgerRepository) ListByShipmentItem(ctx context.Context, shipmentItemID uuid.UUID) ([]inventory.LedgerEntry, error) {
	var rows []models.LedgerEntryModel
	err := r.db.WithContext(ctx).Where("shipment_item_id = ?", shipmentItemID).Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	entries := make([]inventory.LedgerEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

var _ inventory.LedgerRepository = (*GormLedgerRepository)(nil)
