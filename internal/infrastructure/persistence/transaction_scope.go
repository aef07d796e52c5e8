package persistence

import (
	"context"
	"fmt"
	"time"

	appinv "github.com/erp/stockcore/internal/application/inventory"
	"github.com/erp/stockcore/internal/domain/fulfillment"
	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/domain/production"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// On Postgres every transaction sets a local lock_timeout, so a writer
// blocked on a row lock fails with shared.ErrLockTimeout instead of waiting
// forever.
type GormTransactionScope struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormTransactionScope creates a new GormTransactionScope.
// A zero lockTimeout leaves the server default in place.
func NewGormTransactionScope(db *gorm.DB, lockTimeout time.Duration) *GormTransactionScope {
	return &GormTransactionScope{db: db, lockTimeout: lockTimeout}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.lockTimeout > 0 && tx.Dialector.Name() == "postgres" {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(&gormTransactionalRepositories{tx: tx})
	})
	return translateError(err)
}

// gormTransactionalRepositories hands out repositories bound to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) StockItemRepo() inventory.StockItemRepository {
	return NewGormStockItemRepository(r.tx)
}

func (r *gormTransactionalRepositories) LedgerRepo() inventory.LedgerRepository {
	return NewGormLedgerRepository(r.tx)
}

func (r *gormTransactionalRepositories) PackageRepo() inventory.PackageRepository {
	return NewGormPackageRepository(r.tx)
}

func (r *gormTransactionalRepositories) ShipmentRepo() fulfillment.ShipmentRepository {
	return NewGormShipmentRepository(r.tx)
}

func (r *gormTransactionalRepositories) CountRepo() inventory.InventoryCountRepository {
	return NewGormInventoryCountRepository(r.tx)
}

func (r *gormTransactionalRepositories) OrderRepo() production.ProductionOrderRepository {
	return NewGormProductionOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) WorkOrderRepo() production.WorkOrderRepository {
	return NewGormWorkOrderRepository(r.tx)
}

// NewRepositories returns non-transactional repositories for read paths
func NewRepositories(db *gorm.DB) appinv.Repositories {
	return appinv.Repositories{
		StockItems: NewGormStockItemRepository(db),
		Ledger:     NewGormLedgerRepository(db),
		Packages:   NewGormPackageRepository(db),
		Shipments:  NewGormShipmentRepository(db),
		Counts:     NewGormInventoryCountRepository(db),
		Orders:     NewGormProductionOrderRepository(db),
		WorkOrders: NewGormWorkOrderRepository(db),
	}
}

var (
	_ appinv.TransactionScope          = (*GormTransactionScope)(nil)
	_ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
