package inventory

import (
	"context"
	"testing"

	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newStockedItem(t *testing.T, total, reserved int64) *inventory.StockItem {
	t.Helper()
	item, err := inventory.NewStockItem(inventory.ItemKindProduct, "P-1", "Widget", "pcs", decimal.NewFromInt(10))
	require.NoError(t, err)
	item.TotalQuantity = decimal.NewFromInt(total)
	item.ReservedQuantity = decimal.NewFromInt(reserved)
	return item
}

func setupReservations(t *testing.T) (*ReservationManager, *MockStockItemRepository, TransactionalRepositories, *recordingMetrics, *observer.ObservedLogs) {
	t.Helper()
	repo := new(MockStockItemRepository)
	metrics := newRecordingMetrics()
	core, logs := observer.New(zap.WarnLevel)
	m := NewReservationManager(zap.New(core), metrics)
	return m, repo, NewNoOpTransactionScope(Repositories{StockItems: repo}), metrics, logs
}

func TestReservationManager_Reserve(t *testing.T) {
	ctx := context.Background()

	t.Run("locks then saves", func(t *testing.T) {
		m, repo, repos, _, _ := setupReservations(t)
		item := newStockedItem(t, 10, 2)
		repo.On("FindByIDForUpdate", ctx, item.ID).Return(item, nil)
		repo.On("Save", ctx, item).Return(nil)

		got, err := m.Reserve(ctx, repos, item.ID, decimal.NewFromInt(8))

		require.NoError(t, err)
		assert.True(t, got.ReservedQuantity.Equal(decimal.NewFromInt(10)))
		assert.True(t, got.AvailableQuantity().IsZero())
		repo.AssertExpectations(t)
	})

	t.Run("insufficient available", func(t *testing.T) {
		m, repo, repos, _, _ := setupReservations(t)
		item := newStockedItem(t, 10, 8)
		repo.On("FindByIDForUpdate", ctx, item.ID).Return(item, nil)

		_, err := m.Reserve(ctx, repos, item.ID, decimal.NewFromInt(3))

		var insufficient *inventory.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.True(t, item.ReservedQuantity.Equal(decimal.NewFromInt(8)))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("lock timeout propagates", func(t *testing.T) {
		m, repo, repos, _, _ := setupReservations(t)
		item := newStockedItem(t, 10, 0)
		repo.On("FindByIDForUpdate", ctx, item.ID).Return(nil, shared.ErrLockTimeout)

		_, err := m.Reserve(ctx, repos, item.ID, decimal.NewFromInt(1))

		assert.ErrorIs(t, err, shared.ErrLockTimeout)
	})
}

func TestReservationManager_Adjust(t *testing.T) {
	ctx := context.Background()

	t.Run("growth checks only the increment", func(t *testing.T) {
		m, repo, repos, _, _ := setupReservations(t)
		item := newStockedItem(t, 10, 6)
		repo.On("FindByIDForUpdate", ctx, item.ID).Return(item, nil)
		repo.On("Save", ctx, item).Return(nil)

		_, err := m.Adjust(ctx, repos, item.ID, decimal.NewFromInt(6), decimal.NewFromInt(10))

		require.NoError(t, err)
		assert.True(t, item.ReservedQuantity.Equal(decimal.NewFromInt(10)))
	})

	t.Run("shrinking releases", func(t *testing.T) {
		m, repo, repos, _, _ := setupReservations(t)
		item := newStockedItem(t, 10, 6)
		repo.On("FindByIDForUpdate", ctx, item.ID).Return(item, nil)
		repo.On("Save", ctx, item).Return(nil)

		_, err := m.Adjust(ctx, repos, item.ID, decimal.NewFromInt(6), decimal.NewFromInt(2))

		require.NoError(t, err)
		assert.True(t, item.ReservedQuantity.Equal(decimal.NewFromInt(2)))
	})

	t.Run("growth beyond available fails", func(t *testing.T) {
		m, repo, repos, _, _ := setupReservations(t)
		item := newStockedItem(t, 10, 6)
		repo.On("FindByIDForUpdate", ctx, item.ID).Return(item, nil)

		_, err := m.Adjust(ctx, repos, item.ID, decimal.NewFromInt(6), decimal.NewFromInt(11))

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestReservationManager_ReleaseClampsAndReports(t *testing.T) {
	ctx := context.Background()
	m, repo, repos, metrics, logs := setupReservations(t)
	item := newStockedItem(t, 10, 2)
	repo.On("FindByIDForUpdate", ctx, item.ID).Return(item, nil)
	repo.On("Save", ctx, item).Return(nil)

	got, err := m.Release(ctx, repos, item.ID, decimal.NewFromInt(5))

	require.NoError(t, err)
	assert.True(t, got.ReservedQuantity.IsZero())
	assert.Equal(t, []string{"reservation_underflow"}, metrics.anomalies[item.ID])
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Anomalous reservation release clamped at zero", logs.All()[0].Message)
}

func TestReservationManager_ReleaseWithinReservation(t *testing.T) {
	ctx := context.Background()
	m, repo, repos, metrics, logs := setupReservations(t)
	item := newStockedItem(t, 10, 4)
	repo.On("FindByIDForUpdate", ctx, item.ID).Return(item, nil)
	repo.On("Save", ctx, item).Return(nil)

	_, err := m.Release(ctx, repos, item.ID, decimal.NewFromInt(4))

	require.NoError(t, err)
	assert.True(t, item.ReservedQuantity.IsZero())
	assert.Empty(t, metrics.anomalies)
	assert.Zero(t, logs.Len())
}
