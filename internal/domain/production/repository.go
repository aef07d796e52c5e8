package production

import (
	"context"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductionOrderRepository persists orders with their items
type ProductionOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductionOrder, error)
	// FindByIDForUpdate locks the order header row
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ProductionOrder, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]ProductionOrder, int64, error)
	// Save upserts the header and all items
	Save(ctx context.Context, order *ProductionOrder) error
}

// WorkOrderRepository persists work orders
type WorkOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*WorkOrder, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]WorkOrder, error)
	Save(ctx context.Context, wo *WorkOrder) error
}
