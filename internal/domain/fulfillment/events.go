package fulfillment

import (
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeShipmentShipped  = "ShipmentShipped"
	EventTypeShipmentReturned = "ShipmentReturned"
)

// ShipmentShippedEvent is raised after all lines of a shipment were deducted
type ShipmentShippedEvent struct {
	shared.BaseDomainEvent
	ShipmentID  uuid.UUID       `json:"shipment_id"`
	ProcessedBy uuid.UUID       `json:"processed_by"`
	Lines       int             `json:"lines"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// NewShipmentShippedEvent creates the event
func NewShipmentShippedEvent(s *Shipment) *ShipmentShippedEvent {
	var processedBy uuid.UUID
	if s.ProcessedBy != nil {
		processedBy = *s.ProcessedBy
	}
	return &ShipmentShippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentShipped, AggregateTypeShipment, s.ID),
		ShipmentID:      s.ID,
		ProcessedBy:     processedBy,
		Lines:           len(s.Items),
		TotalPrice:      s.TotalPrice(),
	}
}

// ShipmentReturnedEvent is raised when a shipped shipment comes back
type ShipmentReturnedEvent struct {
	shared.BaseDomainEvent
	ShipmentID uuid.UUID `json:"shipment_id"`
	Reason     string    `json:"reason"`
}

// NewShipmentReturnedEvent creates the event
func NewShipmentReturnedEvent(s *Shipment, reason string) *ShipmentReturnedEvent {
	return &ShipmentReturnedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentReturned, AggregateTypeShipment, s.ID),
		ShipmentID:      s.ID,
		Reason:          reason,
	}
}
