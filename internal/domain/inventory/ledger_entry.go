package inventory

import (
	"time"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Operation is the kind of quantity-changing event recorded in the ledger
type Operation string

const (
	// OperationIncoming records goods received
	OperationIncoming Operation = "INCOMING"
	// OperationOutgoing records goods leaving with a shipment
	OperationOutgoing Operation = "OUTGOING"
	// OperationAdjustment records a correction, typically from a stocktake
	OperationAdjustment Operation = "ADJUSTMENT"
	// OperationProduction records finished goods from a work order
	OperationProduction Operation = "PRODUCTION"
	// OperationReturn records goods coming back from a returned shipment
	OperationReturn Operation = "RETURN"
)

func (o Operation) String() string {
	return string(o)
}

// IsValid returns true if the operation is known
func (o Operation) IsValid() bool {
	switch o {
	case OperationIncoming, OperationOutgoing, OperationAdjustment, OperationProduction, OperationReturn:
		return true
	}
	return false
}

// ValidateDelta checks the sign of delta against the operation.
// Adjustments may go either way, everything else has a fixed direction.
func (o Operation) ValidateDelta(delta decimal.Decimal) error {
	if !o.IsValid() {
		return shared.NewDomainError("INVALID_OPERATION", "Unknown ledger operation: "+string(o))
	}
	if delta.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Ledger delta cannot be zero")
	}
	if err := shared.CheckScale("INVALID_QUANTITY", "Ledger delta", delta); err != nil {
		return err
	}
	switch o {
	case OperationIncoming, OperationProduction, OperationReturn:
		if delta.IsNegative() {
			return shared.NewDomainError("INVALID_QUANTITY", string(o)+" delta must be positive")
		}
	case OperationOutgoing:
		if delta.IsPositive() {
			return shared.NewDomainError("INVALID_QUANTITY", "OUTGOING delta must be negative")
		}
	}
	return nil
}

// LedgerEntry is an immutable record of one quantity change on a stock item.
// Entries are numbered by insertion order; ID is assigned by the store.
type LedgerEntry struct {
	ID             int64
	ItemID         uuid.UUID
	ItemKind       ItemKind
	Operation      Operation
	Delta          decimal.Decimal
	BalanceAfter   decimal.Decimal
	ActorID        *uuid.UUID
	Reason         string
	ShipmentItemID *uuid.UUID
	CreatedAt      time.Time
}

// newLedgerEntry is only reachable through StockItem.ApplyDelta so that an
// entry never exists without the matching quantity change.
func newLedgerEntry(item *StockItem, op Operation, delta decimal.Decimal, actorID *uuid.UUID, reason string, shipmentItemID *uuid.UUID) *LedgerEntry {
	return &LedgerEntry{
		ItemID:         item.ID,
		ItemKind:       item.Kind,
		Operation:      op,
		Delta:          delta,
		BalanceAfter:   item.TotalQuantity,
		ActorID:        actorID,
		Reason:         reason,
		ShipmentItemID: shipmentItemID,
		CreatedAt:      time.Now(),
	}
}

// IsSystem returns true if no user triggered the entry
func (e *LedgerEntry) IsSystem() bool {
	return e.ActorID == nil
}

// BalanceBefore returns the total quantity before this entry applied
func (e *LedgerEntry) BalanceBefore() decimal.Decimal {
	return e.BalanceAfter.Sub(e.Delta)
}
