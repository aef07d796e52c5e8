package production

import (
	"fmt"
	"time"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WorkOrderStatus is the state of a shift's work order
type WorkOrderStatus string

const (
	WorkOrderStatusPlanned   WorkOrderStatus = "PLANNED"
	WorkOrderStatusCompleted WorkOrderStatus = "COMPLETED"
	WorkOrderStatusCancelled WorkOrderStatus = "CANCELLED"
)

// WorkOrder is one shift's production target against an order item
type WorkOrder struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	OrderItemID uuid.UUID
	StockItemID uuid.UUID
	Target      decimal.Decimal
	Produced    decimal.Decimal
	ShiftDate   time.Time
	Status      WorkOrderStatus
	CompletedBy *uuid.UUID
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewWorkOrder creates a planned work order
func NewWorkOrder(orderID uuid.UUID, item *ProductionOrderItem, target decimal.Decimal, shiftDate time.Time) (*WorkOrder, error) {
	if !target.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Work order target must be positive")
	}
	if err := shared.CheckScale("INVALID_QUANTITY", "Work order target", target); err != nil {
		return nil, err
	}
	now := time.Now()
	return &WorkOrder{
		ID:          uuid.New(),
		OrderID:     orderID,
		OrderItemID: item.ID,
		StockItemID: item.StockItemID,
		Target:      target,
		Produced:    decimal.Zero,
		ShiftDate:   shiftDate,
		Status:      WorkOrderStatusPlanned,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Reason returns the ledger reason for this work order's production entry
func (w *WorkOrder) Reason() string {
	return fmt.Sprintf("work order #%s", w.ID)
}

func (w *WorkOrder) complete(produced decimal.Decimal, actor uuid.UUID) error {
	if w.Status != WorkOrderStatusPlanned {
		return shared.NewIllegalStateTransitionError("WorkOrder", string(w.Status), "complete")
	}
	if !produced.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Produced quantity must be positive")
	}
	if err := shared.CheckScale("INVALID_QUANTITY", "Produced quantity", produced); err != nil {
		return err
	}
	now := time.Now()
	w.Produced = produced
	w.Status = WorkOrderStatusCompleted
	w.CompletedBy = &actor
	w.CompletedAt = &now
	w.UpdatedAt = now
	return nil
}

func (w *WorkOrder) cancel() error {
	if w.Status != WorkOrderStatusPlanned {
		return shared.NewIllegalStateTransitionError("WorkOrder", string(w.Status), "cancel")
	}
	w.Status = WorkOrderStatusCancelled
	w.UpdatedAt = time.Now()
	return nil
}
