package inventory

import (
	"errors"
	"testing"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestCount(t *testing.T) *InventoryCount {
	t.Helper()
	c, err := NewInventoryCount(uuid.New(), "monthly")
	require.NoError(t, err)
	return c
}

func TestNewInventoryCount(t *testing.T) {
	c := createTestCount(t)
	assert.Equal(t, CountStatusInProgress, c.Status)
	assert.Empty(t, c.Items)

	_, err := NewInventoryCount(uuid.Nil, "")
	require.Error(t, err)
}

func TestInventoryCount_AddOrUpdateLine(t *testing.T) {
	t.Run("snapshots system quantity on create", func(t *testing.T) {
		c := createTestCount(t)
		item := createTestStockItem(t, "10", "4")

		line, created, err := c.AddOrUpdateLine(item, dec("15"))

		require.NoError(t, err)
		assert.True(t, created)
		assert.True(t, line.SystemQuantity.Equal(dec("10")))
		assert.True(t, line.Variance().Equal(dec("5")))
	})

	t.Run("update keeps the original snapshot", func(t *testing.T) {
		c := createTestCount(t)
		item := createTestStockItem(t, "10", "0")
		_, _, err := c.AddOrUpdateLine(item, dec("9"))
		require.NoError(t, err)

		item.TotalQuantity = dec("50")
		line, created, err := c.AddOrUpdateLine(item, dec("12"))

		require.NoError(t, err)
		assert.False(t, created)
		assert.Len(t, c.Items, 1)
		assert.True(t, line.SystemQuantity.Equal(dec("10")))
		assert.True(t, line.ActualQuantity.Equal(dec("12")))
	})

	t.Run("rejects edits after completion", func(t *testing.T) {
		c := createTestCount(t)
		_, _, err := c.AddOrUpdateLine(createTestStockItem(t, "1", "0"), dec("1"))
		require.NoError(t, err)
		require.NoError(t, c.Complete())

		_, _, err = c.AddOrUpdateLine(createTestStockItem(t, "1", "0"), dec("1"))
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	t.Run("rejects negative counts", func(t *testing.T) {
		c := createTestCount(t)
		_, _, err := c.AddOrUpdateLine(createTestStockItem(t, "1", "0"), dec("-1"))
		require.Error(t, err)
	})
}

func TestInventoryCount_Complete(t *testing.T) {
	c := createTestCount(t)
	require.Error(t, c.Complete(), "empty count cannot complete")

	_, _, err := c.AddOrUpdateLine(createTestStockItem(t, "1", "0"), dec("1"))
	require.NoError(t, err)
	require.NoError(t, c.Complete())
	assert.Equal(t, CountStatusCompleted, c.Status)
	assert.NotNil(t, c.CompletedAt)

	assert.True(t, errors.Is(c.Complete(), shared.ErrInvalidState))
}

func TestInventoryCount_Finalize(t *testing.T) {
	t.Run("applies non-zero variances as adjustments", func(t *testing.T) {
		c := createTestCount(t)
		up := createTestStockItem(t, "10", "0")
		same := createTestStockItem(t, "7", "0")
		_, _, err := c.AddOrUpdateLine(up, dec("15"))
		require.NoError(t, err)
		_, _, err = c.AddOrUpdateLine(same, dec("7"))
		require.NoError(t, err)
		require.NoError(t, c.Complete())

		entries, err := c.Finalize(map[uuid.UUID]*StockItem{up.ID: up, same.ID: same})

		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, OperationAdjustment, entries[0].Operation)
		assert.True(t, entries[0].Delta.Equal(dec("5")))
		assert.Equal(t, c.UserID, *entries[0].ActorID)
		assert.Equal(t, "stocktake #"+c.ID.String(), entries[0].Reason)
		assert.True(t, up.TotalQuantity.Equal(dec("15")))
		assert.True(t, same.TotalQuantity.Equal(dec("7")))
		assert.Equal(t, CountStatusReconciled, c.Status)
		assert.NotNil(t, c.ReconciledAt)
	})

	t.Run("second finalize is rejected", func(t *testing.T) {
		c := createTestCount(t)
		item := createTestStockItem(t, "10", "0")
		_, _, err := c.AddOrUpdateLine(item, dec("15"))
		require.NoError(t, err)
		require.NoError(t, c.Complete())
		items := map[uuid.UUID]*StockItem{item.ID: item}
		_, err = c.Finalize(items)
		require.NoError(t, err)

		_, err = c.Finalize(items)

		var finalized *AlreadyFinalizedError
		require.True(t, errors.As(err, &finalized))
		assert.True(t, item.TotalQuantity.Equal(dec("15")))
	})

	t.Run("requires completed status", func(t *testing.T) {
		c := createTestCount(t)
		_, err := c.Finalize(nil)
		var illegal *shared.IllegalStateTransitionError
		require.True(t, errors.As(err, &illegal))
	})

	t.Run("negative result aborts", func(t *testing.T) {
		c := createTestCount(t)
		item := createTestStockItem(t, "10", "0")
		_, _, err := c.AddOrUpdateLine(item, dec("2"))
		require.NoError(t, err)
		require.NoError(t, c.Complete())
		// stock left before finalize
		_, err = item.ApplyDelta(OperationAdjustment, dec("-9"), nil, "", nil)
		require.NoError(t, err)

		_, err = c.Finalize(map[uuid.UUID]*StockItem{item.ID: item})

		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		assert.Equal(t, CountStatusCompleted, c.Status)
	})
}

func TestCountStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, CountStatusInProgress.CanTransitionTo(CountStatusCompleted))
	assert.False(t, CountStatusInProgress.CanTransitionTo(CountStatusReconciled))
	assert.True(t, CountStatusCompleted.CanTransitionTo(CountStatusReconciled))
	assert.False(t, CountStatusReconciled.CanTransitionTo(CountStatusCompleted))
}

func TestInventoryCount_AddOrUpdateLine_RejectsUnstorableScale(t *testing.T) {
	c := createTestCount(t)
	item := createTestStockItem(t, "10", "0")

	_, _, err := c.AddOrUpdateLine(item, dec("9.99995"))

	assert.Error(t, err)
	assert.Empty(t, c.Items)
}
