package persistence

import (
	"context"

	"github.com/erp/stockcore/internal/domain/production"
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/erp/stockcore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductionOrderRepository implements ProductionOrderRepository using GORM
type GormProductionOrderRepository struct {
	db *gorm.DB
}

// NewGormProductionOrderRepository creates a new GormProductionOrderRepository
func NewGormProductionOrderRepository(db *gorm.DB) *GormProductionOrderRepository {
	return &GormProductionOrderRepository{db: db}
}

// FindByID loads an order with its items
func (r *GormProductionOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.ProductionOrder, error) {
	var model models.ProductionOrderModel
	err := r.db.WithContext(ctx).Preload("Items", orderLines).Where("id = ?", id).First(&model).Error
	if err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate locks the order header row, then loads the items
func (r *GormProductionOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*production.ProductionOrder, error) {
	var model models.ProductionOrderModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		return nil, translateError(err)
	}
	if err := r.db.WithContext(ctx).Scopes(orderLines).Where("order_id = ?", id).Find(&model.Items).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists orders, newest first by default, with their items so statuses can be derived
func (r *GormProductionOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]production.ProductionOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductionOrderModel{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ProductionOrderModel
	err := query.Preload("Items", orderLines).
		Order(orderClause(filter, ProductionOrderSortFields, "created_at", "DESC")).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	orders := make([]production.ProductionOrder, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, total, nil
}

// Save upserts the header and all items
func (r *GormProductionOrderRepository) Save(ctx context.Context, order *production.ProductionOrder) error {
	model := models.ProductionOrderModelFromDomain(order)
	db := r.db.WithContext(ctx)

	err := db.Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"note", "due_date", "version", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return translateError(err)
	}
	for i := range model.Items {
		item := &model.Items[i]
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity_requested", "quantity_planned", "quantity_produced", "updated_at"}),
		}).Create(item).Error
		if isDuplicate(err) {
			return &shared.DuplicateLineError{What: "production order item", Key: "stock item " + item.StockItemID.String()}
		}
		if err != nil {
			return translateError(err)
		}
	}
	return nil
}

// GormWorkOrderRepository implements WorkOrderRepository using GORM
type GormWorkOrderRepository struct {
	db *gorm.DB
}

// NewGormWorkOrderRepository creates a new GormWorkOrderRepository
func NewGormWorkOrderRepository(db *gorm.DB) *GormWorkOrderRepository {
	return &GormWorkOrderRepository{db: db}
}

// FindByID finds a work order by ID
func (r *GormWorkOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.WorkOrder, error) {
	var model models.WorkOrderModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByOrder lists the work orders of an order by shift date
func (r *GormWorkOrderRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]production.WorkOrder, error) {
	var rows []models.WorkOrderModel
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("shift_date ASC, created_at ASC").Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	wos := make([]production.WorkOrder, len(rows))
	for i := range rows {
		wos[i] = *rows[i].ToDomain()
	}
	return wos, nil
}

// Save upserts a work order
func (r *GormWorkOrderRepository) Save(ctx context.Context, wo *production.WorkOrder) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"produced", "status", "completed_by", "completed_at", "updated_at"}),
		}).
		Create(models.WorkOrderModelFromDomain(wo)).Error
	return translateError(err)
}

var (
	_ production.ProductionOrderRepository = (*GormProductionOrderRepository)(nil)
	_ production.WorkOrderRepository       = (*GormWorkOrderRepository)(nil)
)
