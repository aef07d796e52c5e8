package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// StockSnapshot is a point-in-time aggregate over all stock items
type StockSnapshot struct {
	Items          int64
	Anomalous      int64
	ReservedTotal  float64
	AvailableTotal float64
}

// StockSnapshotProvider computes stock aggregates for gauges
type StockSnapshotProvider interface {
	Snapshot(ctx context.Context) (StockSnapshot, error)
}

// GormStockSnapshotProvider aggregates the stock_items table in one query
type GormStockSnapshotProvider struct {
	db *gorm.DB
}

// NewGormStockSnapshotProvider creates a GormStockSnapshotProvider
func NewGormStockSnapshotProvider(db *gorm.DB) *GormStockSnapshotProvider {
	return &GormStockSnapshotProvider{db: db}
}

// Snapshot returns item counts and quantity totals. Totals are floats since
// they only feed gauges.
func (p *GormStockSnapshotProvider) Snapshot(ctx context.Context) (StockSnapshot, error) {
	var row struct {
		Items          int64
		Anomalous      int64
		ReservedTotal  float64
		AvailableTotal float64
	}
	err := p.db.WithContext(ctx).
		Table("stock_items").
		Select(`COUNT(*) AS items,
			COALESCE(SUM(CASE WHEN reserved_quantity > total_quantity OR reserved_quantity < 0 THEN 1 ELSE 0 END), 0) AS anomalous,
			COALESCE(SUM(reserved_quantity), 0) AS reserved_total,
			COALESCE(SUM(total_quantity - reserved_quantity), 0) AS available_total`).
		Scan(&row).Error
	if err != nil {
		return StockSnapshot{}, err
	}
	return StockSnapshot(row), nil
}
