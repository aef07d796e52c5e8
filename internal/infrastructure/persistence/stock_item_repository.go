package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/erp/stockcore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockItemRepository implements StockItemRepository using GORM
type GormStockItemRepository struct {
	db *gorm.DB
}

// NewGormStockItemRepository creates a new GormStockItemRepository
func NewGormStockItemRepository(db *gorm.DB) *GormStockItemRepository {
	return &GormStockItemRepository{db: db}
}

// FindByID finds a stock item by ID
func (r *GormStockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockItem, error) {
	var model models.StockItemModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a stock item and locks its row (SELECT ... FOR UPDATE).
// Must be called inside a transaction.
func (r *GormStockItemRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.StockItem, error) {
	var model models.StockItemModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDsForUpdate locks all rows in ascending ID order with one statement.
// Postgres takes row locks in the order rows are returned, so ORDER BY id
// gives every caller the same lock order.
func (r *GormStockItemRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*inventory.StockItem, error) {
	ids = shared.UniqueSortedIDs(ids)
	result := make(map[uuid.UUID]*inventory.StockItem, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []models.StockItemModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	for i := range rows {
		item := rows[i].ToDomain()
		result[item.ID] = item
	}
	for _, id := range ids {
		if _, ok := result[id]; !ok {
			return nil, fmt.Errorf("stock item %s: %w", id, shared.ErrNotFound)
		}
	}
	return result, nil
}

// FindByCode finds a stock item by its unique code
func (r *GormStockItemRepository) FindByCode(ctx context.Context, code string) (*inventory.StockItem, error) {
	var model models.StockItemModel
	if err := r.db.WithContext(ctx).Where("code = ?", strings.TrimSpace(code)).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByBarcode finds a stock item by its unique barcode
func (r *GormStockItemRepository) FindByBarcode(ctx context.Context, barcode string) (*inventory.StockItem, error) {
	var model models.StockItemModel
	if err := r.db.WithContext(ctx).Where("barcode = ?", strings.TrimSpace(barcode)).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists stock items, by code unless the filter picks a sort column
func (r *GormStockItemRepository) FindAll(ctx context.Context, kind inventory.ItemKind, filter shared.Filter) ([]inventory.StockItem, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StockItemModel{})
	if kind != "" {
		query = query.Where("kind = ?", string(kind))
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("code LIKE ? OR name LIKE ? OR barcode = ?", like, like, filter.Search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.StockItemModel
	if err := query.Order(orderClause(filter, StockItemSortFields, "code", "ASC")).Offset(filter.Offset()).Limit(filter.Limit()).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	items := make([]inventory.StockItem, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, total, nil
}

// FindAnomalies lists items with negative available or reserved quantity
func (r *GormStockItemRepository) FindAnomalies(ctx context.Context, limit int) ([]inventory.StockItem, error) {
	var rows []models.StockItemModel
	err := r.db.WithContext(ctx).
		Where("reserved_quantity > total_quantity OR reserved_quantity < 0").
		Order("code ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	items := make([]inventory.StockItem, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, nil
}

// Create inserts a new stock item
func (r *GormStockItemRepository) Create(ctx context.Context, item *inventory.StockItem) error {
	err := r.db.WithContext(ctx).Create(models.StockItemModelFromDomain(item)).Error
	if isDuplicate(err) {
		return &shared.DuplicateLineError{What: "stock item", Key: item.Code}
	}
	return translateError(err)
}

// Save writes the mutable columns of an existing item
func (r *GormStockItemRepository) Save(ctx context.Context, item *inventory.StockItem) error {
	m := models.StockItemModelFromDomain(item)
	result := r.db.WithContext(ctx).
		Model(&models.StockItemModel{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"barcode":           m.Barcode,
			"name":              m.Name,
			"unit":              m.Unit,
			"price":             m.Price,
			"total_quantity":    m.TotalQuantity,
			"reserved_quantity": m.ReservedQuantity,
			"version":           m.Version,
			"updated_at":        m.UpdatedAt,
		})
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return &shared.DuplicateLineError{What: "barcode", Key: item.Barcode}
		}
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a stock item
func (r *GormStockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.StockItemModel{})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ inventory.StockItemRepository = (*GormStockItemRepository)(nil)
