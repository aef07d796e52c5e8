package inventory

import (
	"context"

	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReservationManager earmarks stock for outgoing lines. Every method works on
// the caller's transaction and locks the item row before checking availability,
// so the check and the write see the same numbers.
type ReservationManager struct {
	logger  *zap.Logger
	metrics Metrics
}

// NewReservationManager creates a ReservationManager
func NewReservationManager(log *zap.Logger, metrics Metrics) *ReservationManager {
	if log == nil {
		log = zap.NewNop()
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &ReservationManager{logger: log, metrics: metrics}
}

// Reserve adds units to the item's reservation. It fails with
// *inventory.InsufficientStockError when available quantity is lower than units.
func (m *ReservationManager) Reserve(ctx context.Context, repos TransactionalRepositories, itemID uuid.UUID, units decimal.Decimal) (*inventory.StockItem, error) {
	item, err := repos.StockItemRepo().FindByIDForUpdate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := item.Reserve(units); err != nil {
		return nil, err
	}
	if err := repos.StockItemRepo().Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Adjust moves a reservation from oldUnits to newUnits. Only the increment is
// checked against availability.
func (m *ReservationManager) Adjust(ctx context.Context, repos TransactionalRepositories, itemID uuid.UUID, oldUnits, newUnits decimal.Decimal) (*inventory.StockItem, error) {
	item, err := repos.StockItemRepo().FindByIDForUpdate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	anomaly, err := item.AdjustReservation(oldUnits, newUnits)
	if err != nil {
		return nil, err
	}
	m.ReportAnomaly(ctx, anomaly)
	if err := repos.StockItemRepo().Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Release returns units from the reservation. It never fails on an
// inconsistent reservation: the amount is clamped at zero and the anomaly is
// logged and counted.
func (m *ReservationManager) Release(ctx context.Context, repos TransactionalRepositories, itemID uuid.UUID, units decimal.Decimal) (*inventory.StockItem, error) {
	item, err := repos.StockItemRepo().FindByIDForUpdate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	m.ReportAnomaly(ctx, item.Release(units))
	if err := repos.StockItemRepo().Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ReportAnomaly logs and counts a clamped release. A nil anomaly is ignored.
func (m *ReservationManager) ReportAnomaly(ctx context.Context, anomaly *inventory.AnomalousReservationError) {
	if anomaly == nil {
		return
	}
	logger.Enrich(ctx, m.logger).Warn("Anomalous reservation release clamped at zero",
		zap.String("item_id", anomaly.ItemID.String()),
		zap.String("reserved", anomaly.Reserved.String()),
		zap.String("requested", anomaly.Requested.String()),
	)
	m.metrics.RecordAnomaly(ctx, anomaly.ItemID, "reservation_underflow")
}
