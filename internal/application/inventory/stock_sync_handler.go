package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AvailabilityUpdate is the committed state of one item as sent to the
// commerce platform
type AvailabilityUpdate struct {
	EventID   uuid.UUID       `json:"event_id"`
	ItemID    uuid.UUID       `json:"item_id"`
	ItemKind  string          `json:"item_kind"`
	Code      string          `json:"code"`
	Total     decimal.Decimal `json:"total_quantity"`
	Reserved  decimal.Decimal `json:"reserved_quantity"`
	Available decimal.Decimal `json:"available_quantity"`
	Version   int             `json:"version"`
	Cause     string          `json:"cause"`
	ChangedAt time.Time       `json:"changed_at"`
}

// StockSyncPublisher delivers availability updates to the commerce side.
// Delivery mechanics belong to the implementation.
type StockSyncPublisher interface {
	PublishAvailability(ctx context.Context, update AvailabilityUpdate) error
}

// StockSyncHandler forwards committed quantity changes to a StockSyncPublisher.
// An event that was forwarded successfully is skipped when it is delivered again
// within the idempotency window.
type StockSyncHandler struct {
	publisher   StockSyncPublisher
	idempotency shared.IdempotencyStore
	ttl         time.Duration
	logger      *zap.Logger
}

// NewStockSyncHandler creates a StockSyncHandler
func NewStockSyncHandler(publisher StockSyncPublisher, idempotency shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) *StockSyncHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &StockSyncHandler{
		publisher:   publisher,
		idempotency: idempotency,
		ttl:         ttl,
		logger:      logger.Named("stock_sync"),
	}
}

// EventTypes returns the event types this handler is interested in
func (h *StockSyncHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockQuantityChanged}
}

// Handle forwards one StockQuantityChanged event
func (h *StockSyncHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*inventory.StockQuantityChangedEvent)
	if !ok {
		return fmt.Errorf("stock sync: unexpected event type %T", event)
	}

	key := "stock-sync:" + e.EventID().String()
	if h.idempotency != nil {
		done, err := h.idempotency.IsProcessed(ctx, key)
		if err != nil {
			return fmt.Errorf("stock sync: idempotency check: %w", err)
		}
		if done {
			h.logger.Debug("Skipping already forwarded event", zap.String("event_id", e.EventID().String()))
			return nil
		}
	}

	update := AvailabilityUpdate{
		EventID:   e.EventID(),
		ItemID:    e.ItemID,
		ItemKind:  e.ItemKind.String(),
		Code:      e.Code,
		Total:     e.TotalQuantity,
		Reserved:  e.ReservedQuantity,
		Available: e.Available,
		Version:   e.Version,
		Cause:     e.Cause,
		ChangedAt: e.OccurredAt(),
	}
	if err := h.publisher.PublishAvailability(ctx, update); err != nil {
		h.logger.Error("Failed to forward availability",
			zap.String("item_id", e.ItemID.String()),
			zap.Error(err),
		)
		return err
	}
	if h.idempotency != nil {
		if _, err := h.idempotency.MarkProcessed(ctx, key, h.ttl); err != nil {
			h.logger.Warn("Failed to mark event as forwarded", zap.String("event_id", e.EventID().String()), zap.Error(err))
		}
	}
	return nil
}

var _ shared.EventHandler = (*StockSyncHandler)(nil)
