package inventory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAnomalyMonitor_Scan(t *testing.T) {
	repo := new(MockStockItemRepository)
	metrics := newRecordingMetrics()
	core, logs := observer.New(zap.WarnLevel)
	m := NewAnomalyMonitor(repo, metrics, zap.New(core), 0)

	negative := newStockedItem(t, 5, 8)
	repo.On("FindAnomalies", mock.Anything, anomalyScanLimit).Return([]inventory.StockItem{*negative}, nil)

	stats, err := m.Scan(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Anomalies)
	assert.Equal(t, []string{"negative_available"}, metrics.anomalies[negative.ID])
	require.Equal(t, 1, logs.FilterMessage("Stock anomaly detected").Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "-3", fields["available"])
}

func TestAnomalyMonitor_ScanError(t *testing.T) {
	repo := new(MockStockItemRepository)
	m := NewAnomalyMonitor(repo, nil, nil, 0)
	repo.On("FindAnomalies", mock.Anything, anomalyScanLimit).Return(nil, errors.New("db down"))

	_, err := m.Scan(context.Background())

	assert.Error(t, err)
}

func TestAnomalyMonitor_StartStop(t *testing.T) {
	repo := new(MockStockItemRepository)
	var scans atomic.Int32
	repo.On("FindAnomalies", mock.Anything, anomalyScanLimit).
		Run(func(mock.Arguments) { scans.Add(1) }).
		Return([]inventory.StockItem{}, nil)
	m := NewAnomalyMonitor(repo, nil, nil, 5*time.Millisecond)

	m.Start(context.Background())
	assert.Eventually(t, func() bool {
		return scans.Load() >= 2
	}, time.Second, 5*time.Millisecond)
	m.Stop()
	m.Stop()
}

func TestAnomalyMonitor_DisabledWithZeroInterval(t *testing.T) {
	repo := new(MockStockItemRepository)
	m := NewAnomalyMonitor(repo, nil, nil, 0)

	m.Start(context.Background())
	m.Stop()

	repo.AssertNotCalled(t, "FindAnomalies", mock.Anything, mock.Anything)
}

func TestAnomalyMonitor_StopWithoutStart(t *testing.T) {
	repo := new(MockStockItemRepository)
	m := NewAnomalyMonitor(repo, nil, nil, time.Hour)

	stopped := make(chan struct{})
	go func() {
		m.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a monitor that never started")
	}

	// starting after Stop exits right away
	m.Start(context.Background())
	m.Stop()
	repo.AssertNotCalled(t, "FindAnomalies", mock.Anything, mock.Anything)
}
