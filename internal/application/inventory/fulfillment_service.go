package inventory

import (
	"context"
	"strings"

	"github.com/erp/stockcore/internal/domain/fulfillment"
	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/erp/stockcore/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FulfillmentService drives shipments through PENDING, PACKAGED, SHIPPED and
// RETURNED. Every write locks the shipment header first and the stock items
// after it, items in ascending ID order.
type FulfillmentService struct {
	runner
	shipments    fulfillment.ShipmentRepository
	reservations *ReservationManager
}

// NewFulfillmentService creates a FulfillmentService. shipments serves reads
// outside of transactions.
func NewFulfillmentService(scope TransactionScope, shipments fulfillment.ShipmentRepository, reservations *ReservationManager, opts Options) *FulfillmentService {
	return &FulfillmentService{
		runner:       newRunner(scope, opts),
		shipments:    shipments,
		reservations: reservations,
	}
}

// CreateShipment opens a pending shipment without lines
func (s *FulfillmentService) CreateShipment(ctx context.Context, req CreateShipmentRequest) (*ShipmentResponse, error) {
	shipment, err := fulfillment.NewShipment(strings.TrimSpace(req.Sender), strings.TrimSpace(req.Destination), strings.TrimSpace(req.Recipient), req.CreatedBy)
	if err != nil {
		return nil, err
	}
	if err := s.shipments.Create(ctx, shipment); err != nil {
		return nil, err
	}
	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

// GetShipment returns a shipment with its lines
func (s *FulfillmentService) GetShipment(ctx context.Context, id uuid.UUID) (*ShipmentResponse, error) {
	shipment, err := s.shipments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

// ListShipments lists shipment headers, optionally by status
func (s *FulfillmentService) ListShipments(ctx context.Context, filter ListFilter) ([]ShipmentResponse, int64, error) {
	status := fulfillment.ShipmentStatus(strings.ToUpper(filter.Status))
	if status != "" && !status.IsValid() {
		return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown shipment status: "+filter.Status)
	}
	shipments, total, err := s.shipments.FindAll(ctx, status, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	out := make([]ShipmentResponse, len(shipments))
	for i := range shipments {
		out[i] = ToShipmentResponse(&shipments[i])
	}
	return out, total, nil
}

// ReserveLine adds a line for ref to an editable shipment and reserves its
// base units. A package reference reserves quantity times the bundle size of
// the package's item.
func (s *FulfillmentService) ReserveLine(ctx context.Context, shipmentID uuid.UUID, ref inventory.ItemRef, quantity decimal.Decimal) (*ShipmentItemResponse, error) {
	var line *fulfillment.ShipmentItem
	err := s.execute(ctx, "shipment.reserve_line", func(repos TransactionalRepositories, events *eventSink) error {
		shipment, err := repos.ShipmentRepo().FindByIDForUpdate(ctx, shipmentID)
		if err != nil {
			return err
		}
		if !shipment.CanBeEdited() {
			return shared.NewIllegalStateTransitionError(fulfillment.AggregateTypeShipment, shipment.Status.String(), "add lines to")
		}

		resolved, err := resolveRef(ctx, repos.StockItemRepo(), repos.PackageRepo(), ref)
		if err != nil {
			return err
		}
		if resolved.Package != nil {
			line, err = fulfillment.NewPackageLine(shipment.ID, resolved.Package, quantity)
		} else {
			line, err = fulfillment.NewStockItemLine(shipment.ID, resolved.Item, quantity)
		}
		if err != nil {
			return err
		}
		if err := shipment.AddLine(line); err != nil {
			return err
		}

		item, err := s.reservations.Reserve(ctx, repos, line.BaseItemID, line.BaseUnits())
		if err != nil {
			return err
		}
		if err := repos.ShipmentRepo().SaveItem(ctx, line); err != nil {
			return err
		}
		events.collect(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToShipmentItemResponse(line)
	return &resp, nil
}

// UpdateLineQuantity changes a line's quantity and moves its reservation by
// the difference in base units
func (s *FulfillmentService) UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity decimal.Decimal) (*ShipmentItemResponse, error) {
	var updated fulfillment.ShipmentItem
	err := s.execute(ctx, "shipment.update_line", func(repos TransactionalRepositories, events *eventSink) error {
		shipment, err := s.lockLineShipment(ctx, repos, lineID)
		if err != nil {
			return err
		}
		oldUnits, newUnits, err := shipment.UpdateLineQuantity(lineID, quantity)
		if err != nil {
			return err
		}
		line := shipment.FindLine(lineID)
		item, err := s.reservations.Adjust(ctx, repos, line.BaseItemID, oldUnits, newUnits)
		if err != nil {
			return err
		}
		if err := repos.ShipmentRepo().SaveItem(ctx, line); err != nil {
			return err
		}
		updated = *line
		events.collect(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToShipmentItemResponse(&updated)
	return &resp, nil
}

// DeleteLine removes a line. Its reservation is released unless the shipment
// already shipped, in which case the stock stays deducted.
func (s *FulfillmentService) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	return s.execute(ctx, "shipment.delete_line", func(repos TransactionalRepositories, events *eventSink) error {
		shipment, err := s.lockLineShipment(ctx, repos, lineID)
		if err != nil {
			return err
		}
		line, release, err := shipment.RemoveLine(lineID)
		if err != nil {
			return err
		}
		if release {
			item, err := s.reservations.Release(ctx, repos, line.BaseItemID, line.BaseUnits())
			if err != nil {
				return err
			}
			events.collect(item)
		}
		return repos.ShipmentRepo().DeleteItem(ctx, lineID)
	})
}

// PackageShipment marks a pending shipment with lines as packaged
func (s *FulfillmentService) PackageShipment(ctx context.Context, id uuid.UUID) (*ShipmentResponse, error) {
	var shipment *fulfillment.Shipment
	err := s.execute(ctx, "shipment.package", func(repos TransactionalRepositories, events *eventSink) error {
		var err error
		shipment, err = repos.ShipmentRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := shipment.Package(); err != nil {
			return err
		}
		if err := repos.ShipmentRepo().Save(ctx, shipment); err != nil {
			return err
		}
		events.collect(shipment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

// ShipShipment converts every line's reservation into an OUTGOING ledger
// entry and marks the shipment shipped. Availability is re-checked against
// the locked numbers; any shortfall aborts the whole shipment.
func (s *FulfillmentService) ShipShipment(ctx context.Context, id uuid.UUID, actor uuid.UUID) (*ShipmentResponse, error) {
	var shipment *fulfillment.Shipment
	err := s.execute(ctx, "shipment.ship", func(repos TransactionalRepositories, events *eventSink) error {
		var err error
		shipment, err = repos.ShipmentRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := shipment.CheckShippable(); err != nil {
			return err
		}
		items, err := repos.StockItemRepo().FindByIDsForUpdate(ctx, shipment.ItemIDs())
		if err != nil {
			return err
		}
		result, err := shipment.Ship(items, actor)
		if err != nil {
			return err
		}
		for _, anomaly := range result.Anomalies {
			s.reservations.ReportAnomaly(ctx, anomaly)
		}
		if err := saveItemsAndEntries(ctx, repos, items, result.Entries); err != nil {
			return err
		}
		if err := repos.ShipmentRepo().Save(ctx, shipment); err != nil {
			return err
		}
		events.collect(shipment)
		collectItems(events, shipment.ItemIDs(), items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Enrich(ctx, s.logger).Info("Shipment shipped",
		zap.String("shipment_id", id.String()),
		zap.Int("lines", len(shipment.Items)),
	)
	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

// ReturnShipment books every line of a shipped shipment back into stock
func (s *FulfillmentService) ReturnShipment(ctx context.Context, id uuid.UUID, actor uuid.UUID, reason string) (*ShipmentResponse, error) {
	var shipment *fulfillment.Shipment
	err := s.execute(ctx, "shipment.return", func(repos TransactionalRepositories, events *eventSink) error {
		var err error
		shipment, err = repos.ShipmentRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !shipment.Status.CanTransitionTo(fulfillment.ShipmentStatusReturned) {
			return shared.NewIllegalStateTransitionError(fulfillment.AggregateTypeShipment, shipment.Status.String(), "return")
		}
		items, err := repos.StockItemRepo().FindByIDsForUpdate(ctx, shipment.ItemIDs())
		if err != nil {
			return err
		}
		entries, err := shipment.Return(items, actor, strings.TrimSpace(reason))
		if err != nil {
			return err
		}
		if err := saveItemsAndEntries(ctx, repos, items, entries); err != nil {
			return err
		}
		if err := repos.ShipmentRepo().Save(ctx, shipment); err != nil {
			return err
		}
		events.collect(shipment)
		collectItems(events, shipment.ItemIDs(), items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

// DeleteShipment removes a shipment that has not shipped and releases the
// reservations of all its lines
func (s *FulfillmentService) DeleteShipment(ctx context.Context, id uuid.UUID) error {
	return s.execute(ctx, "shipment.delete", func(repos TransactionalRepositories, events *eventSink) error {
		shipment, err := repos.ShipmentRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !shipment.CanBeDeleted() {
			return shared.NewIllegalStateTransitionError(fulfillment.AggregateTypeShipment, shipment.Status.String(), "delete")
		}
		ids := shipment.ItemIDs()
		items, err := repos.StockItemRepo().FindByIDsForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		for i := range shipment.Items {
			line := &shipment.Items[i]
			s.reservations.ReportAnomaly(ctx, items[line.BaseItemID].Release(line.BaseUnits()))
		}
		if err := saveItemsAndEntries(ctx, repos, items, nil); err != nil {
			return err
		}
		if err := repos.ShipmentRepo().Delete(ctx, id); err != nil {
			return err
		}
		collectItems(events, ids, items)
		return nil
	})
}

// lockLineShipment finds the line's shipment and locks its header
func (s *FulfillmentService) lockLineShipment(ctx context.Context, repos TransactionalRepositories, lineID uuid.UUID) (*fulfillment.Shipment, error) {
	line, err := repos.ShipmentRepo().FindItemByID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	return repos.ShipmentRepo().FindByIDForUpdate(ctx, line.ShipmentID)
}

// saveItemsAndEntries writes locked items in ascending ID order, then appends
// the ledger entries in the order they were produced
func saveItemsAndEntries(ctx context.Context, repos TransactionalRepositories, items map[uuid.UUID]*inventory.StockItem, entries []*inventory.LedgerEntry) error {
	ids := make([]uuid.UUID, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	for _, id := range shared.UniqueSortedIDs(ids) {
		if err := repos.StockItemRepo().Save(ctx, items[id]); err != nil {
			return err
		}
	}
	for _, entry := range entries {
		if err := repos.LedgerRepo().Append(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

func collectItems(events *eventSink, ids []uuid.UUID, items map[uuid.UUID]*inventory.StockItem) {
	for _, id := range ids {
		if item, ok := items[id]; ok {
			events.collect(item)
		}
	}
}
