package production

import (
	"time"

	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeProductionOrder is the aggregate type name used in events
const AggregateTypeProductionOrder = "ProductionOrder"

// ProductionOrderItem tracks one product to manufacture. Its status is never
// stored; it is derived from the three quantities on every read.
type ProductionOrderItem struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	StockItemID       uuid.UUID
	QuantityRequested decimal.Decimal
	QuantityPlanned   decimal.Decimal
	QuantityProduced  decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Status returns the derived item status
func (i *ProductionOrderItem) Status() Status {
	return DeriveItemStatus(i.QuantityRequested, i.QuantityPlanned, i.QuantityProduced)
}

// Remaining returns requested minus produced, floored at zero
func (i *ProductionOrderItem) Remaining() decimal.Decimal {
	rest := i.QuantityRequested.Sub(i.QuantityProduced)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// ProductionOrder groups order items. Its status is the aggregate of its items.
type ProductionOrder struct {
	shared.BaseAggregateRoot
	Note      string
	CreatedBy uuid.UUID
	DueDate   *time.Time
	Items     []ProductionOrderItem
}

// NewProductionOrder creates an empty order
func NewProductionOrder(createdBy uuid.UUID, note string, dueDate *time.Time) *ProductionOrder {
	return &ProductionOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Note:              note,
		CreatedBy:         createdBy,
		DueDate:           dueDate,
		Items:             make([]ProductionOrderItem, 0),
	}
}

// Status returns the aggregate status of the order
func (o *ProductionOrder) Status() Status {
	statuses := make([]Status, 0, len(o.Items))
	for i := range o.Items {
		statuses = append(statuses, o.Items[i].Status())
	}
	return AggregateStatus(statuses)
}

// FindItem returns the item with id, or nil
func (o *ProductionOrder) FindItem(id uuid.UUID) *ProductionOrderItem {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i]
		}
	}
	return nil
}

// AddItem requests quantity of a stock item
func (o *ProductionOrder) AddItem(stock *inventory.StockItem, requested decimal.Decimal) (*ProductionOrderItem, error) {
	if stock == nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Order item must reference a stock item")
	}
	if !requested.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be positive")
	}
	if err := shared.CheckScale("INVALID_QUANTITY", "Requested quantity", requested); err != nil {
		return nil, err
	}
	for i := range o.Items {
		if o.Items[i].StockItemID == stock.ID {
			return nil, &shared.DuplicateLineError{What: "production order item", Key: stock.Code}
		}
	}
	now := time.Now()
	o.Items = append(o.Items, ProductionOrderItem{
		ID:                uuid.New(),
		OrderID:           o.ID,
		StockItemID:       stock.ID,
		QuantityRequested: requested,
		QuantityPlanned:   decimal.Zero,
		QuantityProduced:  decimal.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	o.Touch()
	return &o.Items[len(o.Items)-1], nil
}

// PlanWorkOrder schedules a shift's target against an order item
func (o *ProductionOrder) PlanWorkOrder(itemID uuid.UUID, target decimal.Decimal, shiftDate time.Time) (*WorkOrder, error) {
	item := o.FindItem(itemID)
	if item == nil {
		return nil, shared.ErrNotFound
	}
	wo, err := NewWorkOrder(o.ID, item, target, shiftDate)
	if err != nil {
		return nil, err
	}
	item.QuantityPlanned = item.QuantityPlanned.Add(target)
	item.UpdatedAt = time.Now()
	o.Touch()
	o.IncrementVersion()
	return wo, nil
}

// CompleteWorkOrder records produced units. The returned ledger entry books them
// into stock and must be saved in the same transaction as the order.
func (o *ProductionOrder) CompleteWorkOrder(wo *WorkOrder, stock *inventory.StockItem, produced decimal.Decimal, actor uuid.UUID) (*inventory.LedgerEntry, error) {
	item := o.FindItem(wo.OrderItemID)
	if item == nil {
		return nil, shared.ErrNotFound
	}
	if stock == nil || stock.ID != item.StockItemID {
		return nil, shared.NewDomainError("INVALID_ITEM", "Work order stock item does not match order item")
	}
	if err := wo.complete(produced, actor); err != nil {
		return nil, err
	}

	entry, err := stock.ApplyDelta(inventory.OperationProduction, produced, &actor, wo.Reason(), nil)
	if err != nil {
		return nil, err
	}
	item.QuantityProduced = item.QuantityProduced.Add(produced)
	item.UpdatedAt = time.Now()
	o.Touch()
	o.IncrementVersion()
	o.AddDomainEvent(NewWorkOrderCompletedEvent(o, wo))
	return entry, nil
}

// CancelWorkOrder withdraws a planned work order's target from its item
func (o *ProductionOrder) CancelWorkOrder(wo *WorkOrder) error {
	item := o.FindItem(wo.OrderItemID)
	if item == nil {
		return shared.ErrNotFound
	}
	if err := wo.cancel(); err != nil {
		return err
	}
	item.QuantityPlanned = item.QuantityPlanned.Sub(wo.Target)
	if item.QuantityPlanned.IsNegative() {
		item.QuantityPlanned = decimal.Zero
	}
	item.UpdatedAt = time.Now()
	o.Touch()
	o.IncrementVersion()
	return nil
}
