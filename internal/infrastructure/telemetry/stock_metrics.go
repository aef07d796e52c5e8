package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// StockMetrics records the stock services' operations, lock retries and
// anomalies, and observes stock aggregates on every collection
type StockMetrics struct {
	operations *Counter
	duration   *Histogram
	retries    *Counter
	anomalies  *Counter
	logger     *zap.Logger
}

// NewStockMetrics creates the instruments on meter. A nil snapshots skips
// the aggregate gauges.
func NewStockMetrics(meter metric.Meter, snapshots StockSnapshotProvider, logger *zap.Logger) (*StockMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &StockMetrics{logger: logger}
	var err error
	if m.operations, err = NewCounter(meter, "stock.operations", "Stock write operations by outcome", "{operation}"); err != nil {
		return nil, err
	}
	if m.duration, err = NewHistogram(meter, HistogramOpts{
		Name:        "stock.operation.duration",
		Description: "Stock write latency including lock waits and retries",
		Unit:        "s",
		Boundaries:  OperationDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.retries, err = NewCounter(meter, "stock.lock_retries", "Operations retried after a lock timeout", "{retry}"); err != nil {
		return nil, err
	}
	if m.anomalies, err = NewCounter(meter, "stock.anomalies", "Anomalous stock states observed", "{anomaly}"); err != nil {
		return nil, err
	}
	if snapshots != nil {
		if err := m.registerGauges(meter, snapshots); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *StockMetrics) registerGauges(meter metric.Meter, snapshots StockSnapshotProvider) error {
	items, err := meter.Int64ObservableGauge("stock.items", metric.WithDescription("Stock items on record"))
	if err != nil {
		return err
	}
	anomalous, err := meter.Int64ObservableGauge("stock.items.anomalous", metric.WithDescription("Items with negative available or reserved quantity"))
	if err != nil {
		return err
	}
	reserved, err := meter.Float64ObservableGauge("stock.quantity.reserved", metric.WithDescription("Reserved quantity over all items"))
	if err != nil {
		return err
	}
	available, err := meter.Float64ObservableGauge("stock.quantity.available", metric.WithDescription("Available quantity over all items"))
	if err != nil {
		return err
	}
	_, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		snap, err := snapshots.Snapshot(ctx)
		if err != nil {
			m.logger.Warn("Failed to collect stock snapshot", zap.Error(err))
			return nil
		}
		o.ObserveInt64(items, snap.Items)
		o.ObserveInt64(anomalous, snap.Anomalous)
		o.ObserveFloat64(reserved, snap.ReservedTotal)
		o.ObserveFloat64(available, snap.AvailableTotal)
		return nil
	}, items, anomalous, reserved, available)
	return err
}

// RecordOperation counts one operation by outcome and records its latency
func (m *StockMetrics) RecordOperation(ctx context.Context, operation string, elapsed time.Duration, err error) {
	attrs := []attribute.KeyValue{AttrOperation.String(operation), AttrOutcome.String(outcome(err))}
	m.operations.Inc(ctx, attrs...)
	m.duration.RecordDuration(ctx, elapsed, attrs...)
}

// RecordRetry counts a lock timeout retry
func (m *StockMetrics) RecordRetry(ctx context.Context, operation string) {
	m.retries.Inc(ctx, AttrOperation.String(operation))
}

// RecordAnomaly counts an anomaly by kind. The item ID stays out of the
// attributes to keep cardinality bounded.
func (m *StockMetrics) RecordAnomaly(ctx context.Context, _ uuid.UUID, kind string) {
	m.anomalies.Inc(ctx, AttrAnomalyKind.String(kind))
}

// outcome buckets errors by domain code so rejected requests are told apart
// from infrastructure failures
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return "error"
}
