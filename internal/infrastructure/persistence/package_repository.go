package persistence

import (
	"context"

	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/erp/stockcore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPackageRepository implements PackageRepository using GORM
type GormPackageRepository struct {
	db *gorm.DB
}

// NewGormPackageRepository creates a new GormPackageRepository
func NewGormPackageRepository(db *gorm.DB) *GormPackageRepository {
	return &GormPackageRepository{db: db}
}

// FindByID finds a package by ID
func (r *GormPackageRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Package, error) {
	var model models.PackageModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByItem lists the packages of an item by bundle size
func (r *GormPackageRepository) FindByItem(ctx context.Context, itemID uuid.UUID) ([]inventory.Package, error) {
	var rows []models.PackageModel
	if err := r.db.WithContext(ctx).Where("item_id = ?", itemID).Order("bundle_size ASC").Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	pkgs := make([]inventory.Package, len(rows))
	for i := range rows {
		pkgs[i] = *rows[i].ToDomain()
	}
	return pkgs, nil
}

// Create inserts a package; the (item_id, bundle_size) unique index rejects duplicates
func (r *GormPackageRepository) Create(ctx context.Context, pkg *inventory.Package) error {
	err := r.db.WithContext(ctx).Create(models.PackageModelFromDomain(pkg)).Error
	if isDuplicate(err) {
		return &shared.DuplicateLineError{What: "package", Key: "bundle size " + pkg.BundleSize.String()}
	}
	return translateError(err)
}

// Delete removes a package
func (r *GormPackageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PackageModel{})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ inventory.PackageRepository = (*GormPackageRepository)(nil)
