package inventory

import (
	"strings"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeStockItem is the aggregate type name used in events
const AggregateTypeStockItem = "StockItem"

// StockItem is a quantity-tracked material or product.
//
// TotalQuantity changes only through ApplyDelta, which returns the ledger entry
// that must be persisted in the same transaction. ReservedQuantity changes only
// through the reservation methods. AvailableQuantity may go negative when counts
// and reservations race; that state is reported by HasAnomaly, not rejected.
type StockItem struct {
	shared.BaseAggregateRoot
	Kind             ItemKind
	Code             string
	Barcode          string
	Name             string
	Unit             string
	Price            decimal.Decimal
	TotalQuantity    decimal.Decimal
	ReservedQuantity decimal.Decimal
}

// NewStockItem creates a catalog entry with zero quantities
func NewStockItem(kind ItemKind, code, name, unit string, price decimal.Decimal) (*StockItem, error) {
	if !kind.IsStocked() {
		return nil, shared.NewDomainError("INVALID_ITEM_KIND", "Stock items must be MATERIAL or PRODUCT")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Code cannot be empty")
	}
	if len(code) > 64 {
		return nil, shared.NewDomainError("INVALID_CODE", "Code cannot exceed 64 characters")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if err := shared.CheckScale("INVALID_PRICE", "Price", price); err != nil {
		return nil, err
	}
	if unit == "" {
		unit = "pcs"
	}

	return &StockItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Kind:              kind,
		Code:              code,
		Name:              name,
		Unit:              unit,
		Price:             price,
		TotalQuantity:     decimal.Zero,
		ReservedQuantity:  decimal.Zero,
	}, nil
}

// Ref returns the tagged reference for this item
func (s *StockItem) Ref() ItemRef {
	return ItemRef{Kind: s.Kind, ID: s.ID}
}

// AvailableQuantity returns total minus reserved
func (s *StockItem) AvailableQuantity() decimal.Decimal {
	return s.TotalQuantity.Sub(s.ReservedQuantity)
}

// HasAnomaly returns true when available or reserved quantity is negative
func (s *StockItem) HasAnomaly() bool {
	return s.AvailableQuantity().IsNegative() || s.ReservedQuantity.IsNegative()
}

// SetBarcode sets the scannable barcode, empty clears it
func (s *StockItem) SetBarcode(barcode string) {
	s.Barcode = strings.TrimSpace(barcode)
	s.Touch()
}

// UpdatePrice changes the catalog price. Existing shipment lines keep their frozen price.
func (s *StockItem) UpdatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if err := shared.CheckScale("INVALID_PRICE", "Price", price); err != nil {
		return err
	}
	s.Price = price
	s.Touch()
	s.IncrementVersion()
	return nil
}

// ApplyDelta changes the total quantity and returns the ledger entry describing it.
// A change that would take total below zero fails with InsufficientStockError and
// leaves the item untouched.
func (s *StockItem) ApplyDelta(op Operation, delta decimal.Decimal, actorID *uuid.UUID, reason string, shipmentItemID *uuid.UUID) (*LedgerEntry, error) {
	if err := op.ValidateDelta(delta); err != nil {
		return nil, err
	}
	newTotal := s.TotalQuantity.Add(delta)
	if newTotal.IsNegative() {
		return nil, NewInsufficientStockError(s.ID, delta.Neg(), s.TotalQuantity)
	}

	s.TotalQuantity = newTotal
	s.Touch()
	s.IncrementVersion()

	entry := newLedgerEntry(s, op, delta, actorID, reason, shipmentItemID)
	s.AddDomainEvent(NewStockQuantityChangedEvent(s, string(op)))
	return entry, nil
}

// Reserve earmarks units for an outgoing line. It fails without mutating
// anything when available quantity does not cover units.
func (s *StockItem) Reserve(units decimal.Decimal) error {
	if !units.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Reservation quantity must be positive")
	}
	if err := shared.CheckScale("INVALID_QUANTITY", "Reservation quantity", units); err != nil {
		return err
	}
	available := s.AvailableQuantity()
	if available.LessThan(units) {
		return NewInsufficientStockError(s.ID, units, available)
	}
	s.ReservedQuantity = s.ReservedQuantity.Add(units)
	s.Touch()
	s.IncrementVersion()
	s.AddDomainEvent(NewStockQuantityChangedEvent(s, "RESERVE"))
	return nil
}

// Release returns units from the reservation. Reserved quantity is floored at
// zero; when that happens the returned anomaly describes the inconsistency.
func (s *StockItem) Release(units decimal.Decimal) *AnomalousReservationError {
	if !units.IsPositive() {
		return nil
	}
	var anomaly *AnomalousReservationError
	if units.GreaterThan(s.ReservedQuantity) {
		anomaly = &AnomalousReservationError{ItemID: s.ID, Reserved: s.ReservedQuantity, Requested: units}
		s.ReservedQuantity = decimal.Zero
	} else {
		s.ReservedQuantity = s.ReservedQuantity.Sub(units)
	}
	s.Touch()
	s.IncrementVersion()
	s.AddDomainEvent(NewStockQuantityChangedEvent(s, "RELEASE"))
	return anomaly
}

// AdjustReservation moves a reservation from oldUnits to newUnits. Growth is
// validated against availability for the increment only; shrinking always succeeds.
func (s *StockItem) AdjustReservation(oldUnits, newUnits decimal.Decimal) (*AnomalousReservationError, error) {
	delta := newUnits.Sub(oldUnits)
	switch {
	case delta.IsPositive():
		return nil, s.Reserve(delta)
	case delta.IsNegative():
		return s.Release(delta.Neg()), nil
	}
	return nil, nil
}

// AvailableIgnoring returns available quantity as if ownUnits of the current
// reservation did not exist. Only the part of ownUnits actually reserved is added back.
func (s *StockItem) AvailableIgnoring(ownUnits decimal.Decimal) decimal.Decimal {
	own := decimal.Min(ownUnits, s.ReservedQuantity)
	if own.IsNegative() {
		own = decimal.Zero
	}
	return s.AvailableQuantity().Add(own)
}

// CommitReservation converts a reservation of units into a real outgoing
// deduction for shipment line lineID.
func (s *StockItem) CommitReservation(units decimal.Decimal, lineID uuid.UUID, actorID *uuid.UUID, reason string) (*LedgerEntry, *AnomalousReservationError, error) {
	if !units.IsPositive() {
		return nil, nil, shared.NewDomainError("INVALID_QUANTITY", "Shipped quantity must be positive")
	}
	available := s.AvailableIgnoring(units)
	if available.LessThan(units) {
		return nil, nil, NewInsufficientStockError(s.ID, units, available).ForLine(lineID)
	}

	entry, err := s.ApplyDelta(OperationOutgoing, units.Neg(), actorID, reason, &lineID)
	if err != nil {
		return nil, nil, err
	}
	anomaly := s.Release(units)
	return entry, anomaly, nil
}
