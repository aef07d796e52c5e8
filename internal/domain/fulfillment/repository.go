package fulfillment

import (
	"context"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
)

// ShipmentRepository persists shipments and their lines
type ShipmentRepository interface {
	// FindByID loads a shipment with its lines ordered by creation
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)

	// FindByIDForUpdate locks the shipment header row and loads its lines
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Shipment, error)

	// FindAll lists shipment headers, optionally filtered by status
	FindAll(ctx context.Context, status ShipmentStatus, filter shared.Filter) ([]Shipment, int64, error)

	// FindItemByID loads a single line
	FindItemByID(ctx context.Context, id uuid.UUID) (*ShipmentItem, error)

	// Create inserts a new header
	Create(ctx context.Context, shipment *Shipment) error

	// Save updates the header fields
	Save(ctx context.Context, shipment *Shipment) error

	// SaveItem inserts or updates a line
	SaveItem(ctx context.Context, item *ShipmentItem) error

	// DeleteItem removes a line
	DeleteItem(ctx context.Context, id uuid.UUID) error

	// Delete removes the header and its lines
	Delete(ctx context.Context, id uuid.UUID) error
}
