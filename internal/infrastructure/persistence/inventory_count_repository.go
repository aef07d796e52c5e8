package persistence

import (
	"context"

	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/erp/stockcore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryCountRepository implements InventoryCountRepository using GORM
type GormInventoryCountRepository struct {
	db *gorm.DB
}

// NewGormInventoryCountRepository creates a new GormInventoryCountRepository
func NewGormInventoryCountRepository(db *gorm.DB) *GormInventoryCountRepository {
	return &GormInventoryCountRepository{db: db}
}

// FindByID loads a count with its lines
func (r *GormInventoryCountRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryCount, error) {
	var model models.InventoryCountModel
	err := r.db.WithContext(ctx).Preload("Items", orderLines).Where("id = ?", id).First(&model).Error
	if err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate locks the header row, then loads the lines
func (r *GormInventoryCountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.InventoryCount, error) {
	var model models.InventoryCountModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		return nil, translateError(err)
	}
	if err := r.db.WithContext(ctx).Scopes(orderLines).Where("count_id = ?", id).Find(&model.Items).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists count headers newest first
func (r *GormInventoryCountRepository) FindAll(ctx context.Context, status inventory.CountStatus, filter shared.Filter) ([]inventory.InventoryCount, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InventoryCountModel{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.InventoryCountModel
	if err := query.Order(orderClause(filter, InventoryCountSortFields, "created_at", "DESC")).Offset(filter.Offset()).Limit(filter.Limit()).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	counts := make([]inventory.InventoryCount, len(rows))
	for i := range rows {
		counts[i] = *rows[i].ToDomain()
	}
	return counts, total, nil
}

// Save upserts the header and every line. Existing lines only get their
// actual quantity updated; system quantity is never rewritten.
func (r *GormInventoryCountRepository) Save(ctx context.Context, count *inventory.InventoryCount) error {
	model := models.InventoryCountModelFromDomain(count)
	db := r.db.WithContext(ctx)

	err := db.Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"note", "status", "completed_at", "reconciled_at", "version", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return translateError(err)
	}

	for i := range model.Items {
		line := &model.Items[i]
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"actual_quantity", "updated_at"}),
		}).Create(line).Error
		if isDuplicate(err) {
			return &shared.DuplicateLineError{What: "inventory count line", Key: "item " + line.ItemID.String()}
		}
		if err != nil {
			return translateError(err)
		}
	}
	return nil
}

var _ inventory.InventoryCountRepository = (*GormInventoryCountRepository)(nil)
