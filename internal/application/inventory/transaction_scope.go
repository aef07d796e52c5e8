package inventory

import (
	"context"

	"github.com/erp/stockcore/internal/domain/fulfillment"
	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/domain/production"
)

// TransactionScope provides transactional access to the stock repositories.
// All repository operations inside Execute share one database transaction and
// are committed or rolled back together. Row locks taken through the
// *ForUpdate finders are held until Execute returns.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a transaction.
//
// Aggregate boundaries:
//   - StockItemRepo owns total and reserved quantities; every quantity write
//     goes through a row locked with FindByIDForUpdate or FindByIDsForUpdate.
//   - LedgerRepo is append-only and is written in the same transaction as the
//     quantity change it records.
//   - ShipmentRepo, CountRepo and OrderRepo lock their header rows before line edits.
type TransactionalRepositories interface {
	StockItemRepo() inventory.StockItemRepository
	LedgerRepo() inventory.LedgerRepository
	PackageRepo() inventory.PackageRepository
	ShipmentRepo() fulfillment.ShipmentRepository
	CountRepo() inventory.InventoryCountRepository
	OrderRepo() production.ProductionOrderRepository
	WorkOrderRepo() production.WorkOrderRepository
}

// Repositories is a plain bundle of repositories
type Repositories struct {
	StockItems inventory.StockItemRepository
	Ledger     inventory.LedgerRepository
	Packages   inventory.PackageRepository
	Shipments  fulfillment.ShipmentRepository
	Counts     inventory.InventoryCountRepository
	Orders     production.ProductionOrderRepository
	WorkOrders production.WorkOrderRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// It is used in unit tests with in-memory or mocked repositories.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over repos
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) StockItemRepo() inventory.StockItemRepository     { return s.repos.StockItems }
func (s *NoOpTransactionScope) LedgerRepo() inventory.LedgerRepository           { return s.repos.Ledger }
func (s *NoOpTransactionScope) PackageRepo() inventory.PackageRepository         { return s.repos.Packages }
func (s *NoOpTransactionScope) ShipmentRepo() fulfillment.ShipmentRepository     { return s.repos.Shipments }
func (s *NoOpTransactionScope) CountRepo() inventory.InventoryCountRepository    { return s.repos.Counts }
func (s *NoOpTransactionScope) OrderRepo() production.ProductionOrderRepository  { return s.repos.Orders }
func (s *NoOpTransactionScope) WorkOrderRepo() production.WorkOrderRepository    { return s.repos.WorkOrders }

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
