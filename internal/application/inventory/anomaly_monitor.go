package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/erp/stockcore/internal/domain/inventory"
	"go.uber.org/zap"
)

// anomalyScanLimit caps how many anomalous items one scan reports
const anomalyScanLimit = 500

// AnomalyMonitor periodically looks for items whose available or reserved
// quantity went negative. It only reports; correcting the numbers is a
// stocktake's job.
type AnomalyMonitor struct {
	items    inventory.StockItemRepository
	metrics  Metrics
	logger   *zap.Logger
	interval time.Duration

	mu       sync.Mutex
	started  bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// AnomalyScanStats summarizes one scan
type AnomalyScanStats struct {
	Anomalies int       `json:"anomalies"`
	ScannedAt time.Time `json:"scanned_at"`
}

// NewAnomalyMonitor creates an AnomalyMonitor
func NewAnomalyMonitor(items inventory.StockItemRepository, metrics Metrics, logger *zap.Logger, interval time.Duration) *AnomalyMonitor {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnomalyMonitor{
		items:    items,
		metrics:  metrics,
		logger:   logger.Named("anomaly_monitor"),
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Scan reports every anomalous item once
func (m *AnomalyMonitor) Scan(ctx context.Context) (*AnomalyScanStats, error) {
	stats := &AnomalyScanStats{ScannedAt: time.Now()}
	items, err := m.items.FindAnomalies(ctx, anomalyScanLimit)
	if err != nil {
		m.logger.Error("Failed to scan for stock anomalies", zap.Error(err))
		return nil, err
	}
	stats.Anomalies = len(items)
	for i := range items {
		item := &items[i]
		m.logger.Warn("Stock anomaly detected",
			zap.String("item_id", item.ID.String()),
			zap.String("code", item.Code),
			zap.String("total", item.TotalQuantity.String()),
			zap.String("reserved", item.ReservedQuantity.String()),
			zap.String("available", item.AvailableQuantity().String()),
		)
		m.metrics.RecordAnomaly(ctx, item.ID, "negative_available")
	}
	if stats.Anomalies == 0 {
		m.logger.Debug("No stock anomalies found")
	}
	return stats, nil
}

// Start runs Scan every interval until Stop is called or ctx ends.
// A non-positive interval disables the monitor. Only the first call starts the loop.
func (m *AnomalyMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	if m.interval <= 0 {
		close(m.done)
		return
	}
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case <-ticker.C:
				_, _ = m.Scan(ctx)
			}
		}
	}()
	m.logger.Info("Anomaly monitor started", zap.Duration("interval", m.interval))
}

// Stop ends the background loop and waits for it to exit. It returns at once
// when the monitor was never started.
func (m *AnomalyMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()
	if started {
		<-m.done
	}
}
