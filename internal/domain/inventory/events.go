package inventory

import (
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeStockQuantityChanged     = "StockQuantityChanged"
	EventTypeInventoryCountReconciled = "InventoryCountReconciled"
)

// StockQuantityChangedEvent carries the quantities of an item after a change.
// Consumers such as the commerce sync only read these numbers.
type StockQuantityChangedEvent struct {
	shared.BaseDomainEvent
	ItemID           uuid.UUID       `json:"item_id"`
	ItemKind         ItemKind        `json:"item_kind"`
	Code             string          `json:"code"`
	Cause            string          `json:"cause"`
	TotalQuantity    decimal.Decimal `json:"total_quantity"`
	ReservedQuantity decimal.Decimal `json:"reserved_quantity"`
	Available        decimal.Decimal `json:"available_quantity"`
	Version          int             `json:"version"`
}

// NewStockQuantityChangedEvent snapshots item quantities
func NewStockQuantityChangedEvent(item *StockItem, cause string) *StockQuantityChangedEvent {
	return &StockQuantityChangedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockQuantityChanged, AggregateTypeStockItem, item.ID),
		ItemID:           item.ID,
		ItemKind:         item.Kind,
		Code:             item.Code,
		Cause:            cause,
		TotalQuantity:    item.TotalQuantity,
		ReservedQuantity: item.ReservedQuantity,
		Available:        item.AvailableQuantity(),
		Version:          item.Version,
	}
}

// InventoryCountReconciledEvent is raised when a count's variances were applied
type InventoryCountReconciledEvent struct {
	shared.BaseDomainEvent
	CountID     uuid.UUID `json:"count_id"`
	UserID      uuid.UUID `json:"user_id"`
	Adjustments int       `json:"adjustments"`
}

// NewInventoryCountReconciledEvent creates the event
func NewInventoryCountReconciledEvent(c *InventoryCount, adjustments int) *InventoryCountReconciledEvent {
	return &InventoryCountReconciledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInventoryCountReconciled, AggregateTypeInventoryCount, c.ID),
		CountID:         c.ID,
		UserID:          c.UserID,
		Adjustments:     adjustments,
	}
}
