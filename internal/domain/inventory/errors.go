package inventory

import (
	"fmt"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InsufficientStockError is returned when an operation needs more quantity than exists.
// LineID is set when the shortfall was found while processing a shipment line.
type InsufficientStockError struct {
	ItemID    uuid.UUID
	Requested decimal.Decimal
	Available decimal.Decimal
	LineID    *uuid.UUID
}

func (e *InsufficientStockError) Error() string {
	if e.LineID != nil {
		return fmt.Sprintf("insufficient stock for line %s: item %s requested %s, available %s",
			e.LineID, e.ItemID, e.Requested.String(), e.Available.String())
	}
	return fmt.Sprintf("insufficient stock: item %s requested %s, available %s",
		e.ItemID, e.Requested.String(), e.Available.String())
}

func (e *InsufficientStockError) Unwrap() error {
	return shared.ErrInsufficientStock
}

// NewInsufficientStockError builds an InsufficientStockError
func NewInsufficientStockError(itemID uuid.UUID, requested, available decimal.Decimal) *InsufficientStockError {
	return &InsufficientStockError{ItemID: itemID, Requested: requested, Available: available}
}

// ForLine returns a copy naming the shipment line that could not be satisfied
func (e *InsufficientStockError) ForLine(lineID uuid.UUID) *InsufficientStockError {
	cp := *e
	cp.LineID = &lineID
	return &cp
}

// AnomalousReservationError describes a release or recompute that found reservation
// state already inconsistent. It is logged and counted, never returned to callers.
type AnomalousReservationError struct {
	ItemID    uuid.UUID
	Reserved  decimal.Decimal
	Requested decimal.Decimal
}

func (e *AnomalousReservationError) Error() string {
	return fmt.Sprintf("anomalous reservation on item %s: releasing %s with only %s reserved, clamped to zero",
		e.ItemID, e.Requested.String(), e.Reserved.String())
}

// AlreadyFinalizedError is returned when finalizing an already reconciled count
type AlreadyFinalizedError struct {
	CountID uuid.UUID
}

func (e *AlreadyFinalizedError) Error() string {
	return fmt.Sprintf("inventory count %s is already reconciled", e.CountID)
}

func (e *AlreadyFinalizedError) Unwrap() error {
	return shared.ErrInvalidState
}
