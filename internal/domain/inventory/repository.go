package inventory

import (
	"context"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
)

// StockItemRepository persists stock items
type StockItemRepository interface {
	// FindByID finds a stock item without locking
	FindByID(ctx context.Context, id uuid.UUID) (*StockItem, error)

	// FindByIDForUpdate finds a stock item and takes an exclusive row lock
	// held until the surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*StockItem, error)

	// FindByIDsForUpdate locks several items in ascending ID order.
	// Missing IDs yield shared.ErrNotFound.
	FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*StockItem, error)

	// FindByCode finds a stock item by its unique code
	FindByCode(ctx context.Context, code string) (*StockItem, error)

	// FindByBarcode finds a stock item by its unique barcode
	FindByBarcode(ctx context.Context, barcode string) (*StockItem, error)

	// FindAll lists stock items, optionally narrowed to one kind
	FindAll(ctx context.Context, kind ItemKind, filter shared.Filter) ([]StockItem, int64, error)

	// FindAnomalies lists items whose available or reserved quantity is negative
	FindAnomalies(ctx context.Context, limit int) ([]StockItem, error)

	// Create inserts a new stock item
	Create(ctx context.Context, item *StockItem) error

	// Save updates quantities, price and barcode of an existing item
	Save(ctx context.Context, item *StockItem) error

	// Delete removes an item. Callers must ensure no ledger entries reference it.
	Delete(ctx context.Context, id uuid.UUID) error
}

// LedgerRepository appends and reads ledger entries. There is no update or delete.
type LedgerRepository interface {
	// Append inserts an entry and sets its ID
	Append(ctx context.Context, entry *LedgerEntry) error

	// ListByItem returns up to limit entries for itemID, newest first,
	// with ID strictly less than beforeID when beforeID > 0
	ListByItem(ctx context.Context, itemID uuid.UUID, beforeID int64, limit int) ([]LedgerEntry, error)

	// CountByItem counts entries for itemID
	CountByItem(ctx context.Context, itemID uuid.UUID) (int64, error)

	// ListByShipmentItem returns entries referencing a shipment line
	ListByShipmentItem(ctx context.Context, shipmentItemID uuid.UUID) ([]LedgerEntry, error)
}

// PackageRepository persists bundle definitions
type PackageRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Package, error)
	FindByItem(ctx context.Context, itemID uuid.UUID) ([]Package, error)
	// Create inserts a package; an existing (item, bundle size) pair yields *shared.DuplicateLineError
	Create(ctx context.Context, pkg *Package) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// InventoryCountRepository persists stocktaking sessions with their lines
type InventoryCountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryCount, error)
	// FindByIDForUpdate locks the count header row
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*InventoryCount, error)
	FindAll(ctx context.Context, status CountStatus, filter shared.Filter) ([]InventoryCount, int64, error)
	// Save upserts the header and all lines. A second line for the same item
	// yields *shared.DuplicateLineError.
	Save(ctx context.Context, count *InventoryCount) error
}
