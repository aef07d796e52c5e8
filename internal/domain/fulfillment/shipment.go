package fulfillment

import (
	"fmt"
	"time"

	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeShipment is the aggregate type name used in events
const AggregateTypeShipment = "Shipment"

// ShipmentStatus is the lifecycle state of an outgoing shipment
type ShipmentStatus string

const (
	ShipmentStatusPending  ShipmentStatus = "PENDING"
	ShipmentStatusPackaged ShipmentStatus = "PACKAGED"
	ShipmentStatusShipped  ShipmentStatus = "SHIPPED"
	ShipmentStatusReturned ShipmentStatus = "RETURNED"
)

func (s ShipmentStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is known
func (s ShipmentStatus) IsValid() bool {
	switch s {
	case ShipmentStatusPending, ShipmentStatusPackaged, ShipmentStatusShipped, ShipmentStatusReturned:
		return true
	}
	return false
}

// CanTransitionTo returns true if the status may move to target
func (s ShipmentStatus) CanTransitionTo(target ShipmentStatus) bool {
	switch s {
	case ShipmentStatusPending:
		return target == ShipmentStatusPackaged || target == ShipmentStatusShipped
	case ShipmentStatusPackaged:
		return target == ShipmentStatusShipped
	case ShipmentStatusShipped:
		return target == ShipmentStatusReturned
	}
	return false
}

// HasConvertedStock returns true once reservations became real deductions
func (s ShipmentStatus) HasConvertedStock() bool {
	return s == ShipmentStatusShipped || s == ShipmentStatusReturned
}

// Shipment is an outgoing order header with its lines
type Shipment struct {
	shared.BaseAggregateRoot
	Sender      string
	Destination string
	Recipient   string
	CreatedBy   uuid.UUID
	ProcessedBy *uuid.UUID
	Status      ShipmentStatus
	ShippedAt   *time.Time
	ReturnedAt  *time.Time
	Items       []ShipmentItem
}

// NewShipment creates a pending shipment
func NewShipment(sender, destination, recipient string, createdBy uuid.UUID) (*Shipment, error) {
	if destination == "" {
		return nil, shared.NewDomainError("INVALID_DESTINATION", "Destination cannot be empty")
	}
	return &Shipment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Sender:            sender,
		Destination:       destination,
		Recipient:         recipient,
		CreatedBy:         createdBy,
		Status:            ShipmentStatusPending,
		Items:             make([]ShipmentItem, 0),
	}, nil
}

// CanBeEdited returns true while lines may be added, changed or removed
func (s *Shipment) CanBeEdited() bool {
	return s.Status == ShipmentStatusPending || s.Status == ShipmentStatusPackaged
}

// CanBePackaged returns true for a pending shipment with lines
func (s *Shipment) CanBePackaged() bool {
	return s.Status == ShipmentStatusPending && len(s.Items) > 0
}

// CanBeShipped returns true for a pending or packaged shipment with lines
func (s *Shipment) CanBeShipped() bool {
	return (s.Status == ShipmentStatusPending || s.Status == ShipmentStatusPackaged) && len(s.Items) > 0
}

// CanBeDeleted returns true while no stock has been deducted
func (s *Shipment) CanBeDeleted() bool {
	return s.Status == ShipmentStatusPending || s.Status == ShipmentStatusPackaged
}

// FindLine returns the line with id, or nil
func (s *Shipment) FindLine(id uuid.UUID) *ShipmentItem {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return &s.Items[i]
		}
	}
	return nil
}

// AddLine appends a line. The caller reserves its base units in the same transaction.
func (s *Shipment) AddLine(line *ShipmentItem) error {
	if !s.CanBeEdited() {
		return shared.NewIllegalStateTransitionError(AggregateTypeShipment, string(s.Status), "add lines to")
	}
	if line.ShipmentID != s.ID {
		return shared.NewDomainError("INVALID_LINE", "Line belongs to another shipment")
	}
	s.Items = append(s.Items, *line)
	s.Touch()
	return nil
}

// UpdateLineQuantity changes a line's quantity and returns old and new base units
func (s *Shipment) UpdateLineQuantity(lineID uuid.UUID, quantity decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if !s.CanBeEdited() {
		return decimal.Zero, decimal.Zero, shared.NewIllegalStateTransitionError(AggregateTypeShipment, string(s.Status), "edit lines of")
	}
	if !quantity.IsPositive() {
		return decimal.Zero, decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
	}
	line := s.FindLine(lineID)
	if line == nil {
		return decimal.Zero, decimal.Zero, shared.ErrNotFound
	}
	if err := checkLineScale(quantity, line.BundleSize); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	oldUnits := line.BaseUnits()
	line.Quantity = quantity
	line.UpdatedAt = time.Now()
	s.Touch()
	return oldUnits, line.BaseUnits(), nil
}

// RemoveLine drops a line. The returned bool tells the caller whether the line
// still holds a reservation that must be released.
func (s *Shipment) RemoveLine(lineID uuid.UUID) (ShipmentItem, bool, error) {
	for i := range s.Items {
		if s.Items[i].ID != lineID {
			continue
		}
		line := s.Items[i]
		s.Items = append(s.Items[:i], s.Items[i+1:]...)
		s.Touch()
		return line, !s.Status.HasConvertedStock(), nil
	}
	return ShipmentItem{}, false, shared.ErrNotFound
}

// Package marks physical staging complete
func (s *Shipment) Package() error {
	if !s.CanBePackaged() {
		return shared.NewIllegalStateTransitionError(AggregateTypeShipment, s.statusLabel(), "package")
	}
	s.Status = ShipmentStatusPackaged
	s.Touch()
	s.IncrementVersion()
	return nil
}

// CheckShippable returns the reason the shipment cannot ship, or nil
func (s *Shipment) CheckShippable() error {
	if s.Status == ShipmentStatusShipped {
		return &AlreadyShippedError{ShipmentID: s.ID}
	}
	if !s.CanBeShipped() {
		return shared.NewIllegalStateTransitionError(AggregateTypeShipment, s.statusLabel(), "ship")
	}
	return nil
}

// ItemIDs returns the distinct base stock item IDs in ascending order
func (s *Shipment) ItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.Items))
	for _, line := range s.Items {
		ids = append(ids, line.BaseItemID)
	}
	return shared.UniqueSortedIDs(ids)
}

// ShipResult lists what shipping changed
type ShipResult struct {
	Entries   []*inventory.LedgerEntry
	Anomalies []*inventory.AnomalousReservationError
}

// Ship converts every line's reservation into an outgoing deduction and marks
// the shipment shipped. items must hold the locked base stock items of all
// lines. Any shortfall aborts the whole call; the caller rolls back the
// transaction so no line is observed as partially shipped.
func (s *Shipment) Ship(items map[uuid.UUID]*inventory.StockItem, actor uuid.UUID) (*ShipResult, error) {
	if err := s.CheckShippable(); err != nil {
		return nil, err
	}

	result := &ShipResult{}
	reason := fmt.Sprintf("shipment #%s", s.ID)
	for i := range s.Items {
		line := &s.Items[i]
		item, ok := items[line.BaseItemID]
		if !ok {
			return nil, fmt.Errorf("stock item %s of line %s: %w", line.BaseItemID, line.ID, shared.ErrNotFound)
		}
		entry, anomaly, err := item.CommitReservation(line.BaseUnits(), line.ID, &actor, reason)
		if err != nil {
			return nil, err
		}
		result.Entries = append(result.Entries, entry)
		if anomaly != nil {
			result.Anomalies = append(result.Anomalies, anomaly)
		}
	}

	now := time.Now()
	s.Status = ShipmentStatusShipped
	s.ShippedAt = &now
	s.ProcessedBy = &actor
	s.Touch()
	s.IncrementVersion()
	s.AddDomainEvent(NewShipmentShippedEvent(s))
	return result, nil
}

// Return books every line back into stock and marks the shipment returned
func (s *Shipment) Return(items map[uuid.UUID]*inventory.StockItem, actor uuid.UUID, reason string) ([]*inventory.LedgerEntry, error) {
	if !s.Status.CanTransitionTo(ShipmentStatusReturned) {
		return nil, shared.NewIllegalStateTransitionError(AggregateTypeShipment, string(s.Status), "return")
	}
	if reason == "" {
		reason = fmt.Sprintf("return of shipment #%s", s.ID)
	}

	entries := make([]*inventory.LedgerEntry, 0, len(s.Items))
	for i := range s.Items {
		line := &s.Items[i]
		item, ok := items[line.BaseItemID]
		if !ok {
			return nil, fmt.Errorf("stock item %s of line %s: %w", line.BaseItemID, line.ID, shared.ErrNotFound)
		}
		lineID := line.ID
		entry, err := item.ApplyDelta(inventory.OperationReturn, line.BaseUnits(), &actor, reason, &lineID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	now := time.Now()
	s.Status = ShipmentStatusReturned
	s.ReturnedAt = &now
	s.Touch()
	s.IncrementVersion()
	s.AddDomainEvent(NewShipmentReturnedEvent(s, reason))
	return entries, nil
}

// TotalPrice sums line totals
func (s *Shipment) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for i := range s.Items {
		total = total.Add(s.Items[i].TotalPrice())
	}
	return total
}

func (s *Shipment) statusLabel() string {
	if len(s.Items) == 0 {
		return string(s.Status) + " (no lines)"
	}
	return string(s.Status)
}
