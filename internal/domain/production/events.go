package production

import (
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventTypeWorkOrderCompleted is raised when a work order's output was booked
const EventTypeWorkOrderCompleted = "WorkOrderCompleted"

// WorkOrderCompletedEvent carries the produced quantity and the resulting order status
type WorkOrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	WorkOrderID uuid.UUID       `json:"work_order_id"`
	StockItemID uuid.UUID       `json:"stock_item_id"`
	Produced    decimal.Decimal `json:"produced"`
	OrderStatus Status          `json:"order_status"`
}

// NewWorkOrderCompletedEvent creates the event
func NewWorkOrderCompletedEvent(o *ProductionOrder, wo *WorkOrder) *WorkOrderCompletedEvent {
	return &WorkOrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWorkOrderCompleted, AggregateTypeProductionOrder, o.ID),
		OrderID:         o.ID,
		WorkOrderID:     wo.ID,
		StockItemID:     wo.StockItemID,
		Produced:        wo.Produced,
		OrderStatus:     o.Status(),
	}
}
