package inventory

import (
	"context"
	"strings"

	"github.com/erp/stockcore/internal/domain/production"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductionService plans and completes work orders. Order and item statuses
// are always derived from quantities, so every response reflects the latest
// completion.
type ProductionService struct {
	runner
	orders     production.ProductionOrderRepository
	workOrders production.WorkOrderRepository
}

// NewProductionService creates a ProductionService. orders and workOrders
// serve reads outside of transactions.
func NewProductionService(scope TransactionScope, orders production.ProductionOrderRepository, workOrders production.WorkOrderRepository, opts Options) *ProductionService {
	return &ProductionService{runner: newRunner(scope, opts), orders: orders, workOrders: workOrders}
}

// CreateOrder opens an empty production order
func (s *ProductionService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*ProductionOrderResponse, error) {
	order := production.NewProductionOrder(req.CreatedBy, strings.TrimSpace(req.Note), req.DueDate)
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	resp := ToProductionOrderResponse(order)
	return &resp, nil
}

// GetOrder returns an order with its derived status
func (s *ProductionService) GetOrder(ctx context.Context, id uuid.UUID) (*ProductionOrderResponse, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductionOrderResponse(order)
	return &resp, nil
}

// ListOrders lists production orders
func (s *ProductionService) ListOrders(ctx context.Context, filter ListFilter) ([]ProductionOrderResponse, int64, error) {
	orders, total, err := s.orders.FindAll(ctx, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	out := make([]ProductionOrderResponse, len(orders))
	for i := range orders {
		out[i] = ToProductionOrderResponse(&orders[i])
	}
	return out, total, nil
}

// ListWorkOrders lists the work orders planned against an order
func (s *ProductionService) ListWorkOrders(ctx context.Context, orderID uuid.UUID) ([]WorkOrderResponse, error) {
	wos, err := s.workOrders.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]WorkOrderResponse, len(wos))
	for i := range wos {
		out[i] = ToWorkOrderResponse(&wos[i])
	}
	return out, nil
}

// AddOrderItem requests production of a stock item on an order
func (s *ProductionService) AddOrderItem(ctx context.Context, orderID uuid.UUID, req AddOrderItemRequest) (*ProductionOrderResponse, error) {
	var order *production.ProductionOrder
	err := s.execute(ctx, "production.add_item", func(repos TransactionalRepositories, _ *eventSink) error {
		var err error
		order, err = repos.OrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		stock, err := repos.StockItemRepo().FindByID(ctx, req.StockItemID)
		if err != nil {
			return err
		}
		if _, err := order.AddItem(stock, req.Requested); err != nil {
			return err
		}
		return repos.OrderRepo().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	resp := ToProductionOrderResponse(order)
	return &resp, nil
}

// PlanWorkOrder schedules a shift target against an order item and adds it
// to the item's planned quantity
func (s *ProductionService) PlanWorkOrder(ctx context.Context, orderID uuid.UUID, req PlanWorkOrderRequest) (*WorkOrderResponse, error) {
	var wo *production.WorkOrder
	err := s.execute(ctx, "production.plan", func(repos TransactionalRepositories, _ *eventSink) error {
		order, err := repos.OrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		wo, err = order.PlanWorkOrder(req.OrderItemID, req.Target, req.ShiftDate)
		if err != nil {
			return err
		}
		if err := repos.WorkOrderRepo().Save(ctx, wo); err != nil {
			return err
		}
		return repos.OrderRepo().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	resp := ToWorkOrderResponse(wo)
	return &resp, nil
}

// CompleteWorkOrder books produced units into stock with a PRODUCTION entry,
// adds them to the order item and closes the work order
func (s *ProductionService) CompleteWorkOrder(ctx context.Context, workOrderID uuid.UUID, produced decimal.Decimal, actor uuid.UUID) (*ProductionOrderResponse, error) {
	var order *production.ProductionOrder
	err := s.execute(ctx, "production.complete", func(repos TransactionalRepositories, events *eventSink) error {
		var (
			wo  *production.WorkOrder
			err error
		)
		order, wo, err = s.lockWorkOrder(ctx, repos, workOrderID)
		if err != nil {
			return err
		}
		stock, err := repos.StockItemRepo().FindByIDForUpdate(ctx, wo.StockItemID)
		if err != nil {
			return err
		}
		entry, err := order.CompleteWorkOrder(wo, stock, produced, actor)
		if err != nil {
			return err
		}
		if err := repos.StockItemRepo().Save(ctx, stock); err != nil {
			return err
		}
		if err := repos.LedgerRepo().Append(ctx, entry); err != nil {
			return err
		}
		if err := repos.WorkOrderRepo().Save(ctx, wo); err != nil {
			return err
		}
		if err := repos.OrderRepo().Save(ctx, order); err != nil {
			return err
		}
		events.collect(order, stock)
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToProductionOrderResponse(order)
	return &resp, nil
}

// CancelWorkOrder withdraws a planned work order's target from its order item
func (s *ProductionService) CancelWorkOrder(ctx context.Context, workOrderID uuid.UUID) (*ProductionOrderResponse, error) {
	var order *production.ProductionOrder
	err := s.execute(ctx, "production.cancel", func(repos TransactionalRepositories, _ *eventSink) error {
		var (
			wo  *production.WorkOrder
			err error
		)
		order, wo, err = s.lockWorkOrder(ctx, repos, workOrderID)
		if err != nil {
			return err
		}
		if err := order.CancelWorkOrder(wo); err != nil {
			return err
		}
		if err := repos.WorkOrderRepo().Save(ctx, wo); err != nil {
			return err
		}
		return repos.OrderRepo().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	resp := ToProductionOrderResponse(order)
	return &resp, nil
}

// lockWorkOrder locks the work order's order header and re-reads the work
// order under that lock
func (s *ProductionService) lockWorkOrder(ctx context.Context, repos TransactionalRepositories, workOrderID uuid.UUID) (*production.ProductionOrder, *production.WorkOrder, error) {
	wo, err := repos.WorkOrderRepo().FindByID(ctx, workOrderID)
	if err != nil {
		return nil, nil, err
	}
	order, err := repos.OrderRepo().FindByIDForUpdate(ctx, wo.OrderID)
	if err != nil {
		return nil, nil, err
	}
	wo, err = repos.WorkOrderRepo().FindByID(ctx, workOrderID)
	if err != nil {
		return nil, nil, err
	}
	return order, wo, nil
}
