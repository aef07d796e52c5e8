package persistence

import (
	"context"

	"github.com/erp/stockcore/internal/domain/fulfillment"
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/erp/stockcore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShipmentRepository implements ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// FindByID loads a shipment with its lines
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.Shipment, error) {
	var model models.ShipmentModel
	err := r.db.WithContext(ctx).Preload("Items", orderLines).Where("id = ?", id).First(&model).Error
	if err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate locks the header row, then loads the lines
func (r *GormShipmentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*fulfillment.Shipment, error) {
	var model models.ShipmentModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		return nil, translateError(err)
	}
	if err := r.db.WithContext(ctx).Scopes(orderLines).Where("shipment_id = ?", id).Find(&model.Items).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists shipment headers newest first. Lines are not loaded.
func (r *GormShipmentRepository) FindAll(ctx context.Context, status fulfillment.ShipmentStatus, filter shared.Filter) ([]fulfillment.Shipment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ShipmentModel{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("destination LIKE ? OR recipient LIKE ?", like, like)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ShipmentModel
	if err := query.Order(orderClause(filter, ShipmentSortFields, "created_at", "DESC")).Offset(filter.Offset()).Limit(filter.Limit()).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	shipments := make([]fulfillment.Shipment, len(rows))
	for i := range rows {
		shipments[i] = *rows[i].ToDomain()
	}
	return shipments, total, nil
}

// FindItemByID loads one line
func (r *GormShipmentRepository) FindItemByID(ctx context.Context, id uuid.UUID) (*fulfillment.ShipmentItem, error) {
	var model models.ShipmentItemModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// Create inserts the header
func (r *GormShipmentRepository) Create(ctx context.Context, shipment *fulfillment.Shipment) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(models.ShipmentModelFromDomain(shipment)).Error
	return translateError(err)
}

// Save updates the header columns
func (r *GormShipmentRepository) Save(ctx context.Context, shipment *fulfillment.Shipment) error {
	m := models.ShipmentModelFromDomain(shipment)
	result := r.db.WithContext(ctx).
		Model(&models.ShipmentModel{}).
		Where("id = ?", shipment.ID).
		Updates(map[string]any{
			"sender":       m.Sender,
			"destination":  m.Destination,
			"recipient":    m.Recipient,
			"processed_by": m.ProcessedBy,
			"status":       m.Status,
			"shipped_at":   m.ShippedAt,
			"returned_at":  m.ReturnedAt,
			"version":      m.Version,
			"updated_at":   m.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SaveItem upserts a line
func (r *GormShipmentRepository) SaveItem(ctx context.Context, item *fulfillment.ShipmentItem) error {
	if err := fulfillment.CheckExclusive(item.StockItemID, item.PackageID); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(models.ShipmentItemModelFromDomain(item)).Error
	return translateError(err)
}

// DeleteItem removes a line
func (r *GormShipmentRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ShipmentItemModel{})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the lines and the header
func (r *GormShipmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("shipment_id = ?", id).Delete(&models.ShipmentItemModel{}).Error; err != nil {
		return translateError(err)
	}
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ShipmentModel{})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ fulfillment.ShipmentRepository = (*GormShipmentRepository)(nil)
