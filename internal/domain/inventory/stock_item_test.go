package inventory

import (
	"errors"
	"testing"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func createTestStockItem(t *testing.T, total, reserved string) *StockItem {
	t.Helper()
	item, err := NewStockItem(ItemKindMaterial, "MAT-001", "Steel sheet", "kg", dec("12.50"))
	require.NoError(t, err)
	item.TotalQuantity = dec(total)
	item.ReservedQuantity = dec(reserved)
	item.ClearDomainEvents()
	return item
}

func TestNewStockItem(t *testing.T) {
	t.Run("creates item with zero quantities", func(t *testing.T) {
		item, err := NewStockItem(ItemKindProduct, " PRD-1 ", "Chair", "", dec("49.90"))

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, item.ID)
		assert.Equal(t, "PRD-1", item.Code)
		assert.Equal(t, "pcs", item.Unit)
		assert.True(t, item.TotalQuantity.IsZero())
		assert.True(t, item.ReservedQuantity.IsZero())
		assert.Equal(t, 1, item.Version)
	})

	t.Run("rejects package kind", func(t *testing.T) {
		_, err := NewStockItem(ItemKindPackage, "PKG", "Box", "", decimal.Zero)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MATERIAL or PRODUCT")
	})

	t.Run("rejects empty code", func(t *testing.T) {
		_, err := NewStockItem(ItemKindMaterial, "  ", "X", "", decimal.Zero)
		require.Error(t, err)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewStockItem(ItemKindMaterial, "M", "X", "", dec("-1"))
		require.Error(t, err)
	})
}

func TestStockItem_ApplyDelta(t *testing.T) {
	actor := uuid.New()

	t.Run("incoming increases total and records entry", func(t *testing.T) {
		item := createTestStockItem(t, "10", "0")

		entry, err := item.ApplyDelta(OperationIncoming, dec("5.25"), &actor, "delivery", nil)

		require.NoError(t, err)
		assert.True(t, item.TotalQuantity.Equal(dec("15.25")))
		assert.True(t, entry.Delta.Equal(dec("5.25")))
		assert.True(t, entry.BalanceAfter.Equal(dec("15.25")))
		assert.True(t, entry.BalanceBefore().Equal(dec("10")))
		assert.Equal(t, item.ID, entry.ItemID)
		assert.Equal(t, ItemKindMaterial, entry.ItemKind)
		assert.Equal(t, &actor, entry.ActorID)
		assert.False(t, entry.IsSystem())
		require.Len(t, item.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeStockQuantityChanged, item.GetDomainEvents()[0].EventType())
	})

	t.Run("decrease below zero fails and leaves item untouched", func(t *testing.T) {
		item := createTestStockItem(t, "3", "0")

		entry, err := item.ApplyDelta(OperationAdjustment, dec("-4"), nil, "", nil)

		require.Error(t, err)
		assert.Nil(t, entry)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		var stockErr *InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		assert.True(t, stockErr.Requested.Equal(dec("4")))
		assert.True(t, item.TotalQuantity.Equal(dec("3")))
		assert.Empty(t, item.GetDomainEvents())
	})

	t.Run("system entries have no actor", func(t *testing.T) {
		item := createTestStockItem(t, "0", "0")
		entry, err := item.ApplyDelta(OperationProduction, dec("1"), nil, "", nil)
		require.NoError(t, err)
		assert.True(t, entry.IsSystem())
	})

	t.Run("rejects wrong sign for operation", func(t *testing.T) {
		item := createTestStockItem(t, "10", "0")
		_, err := item.ApplyDelta(OperationOutgoing, dec("1"), nil, "", nil)
		require.Error(t, err)
		_, err = item.ApplyDelta(OperationIncoming, dec("-1"), nil, "", nil)
		require.Error(t, err)
		_, err = item.ApplyDelta(OperationAdjustment, decimal.Zero, nil, "", nil)
		require.Error(t, err)
		assert.True(t, item.TotalQuantity.Equal(dec("10")))
	})

	t.Run("small adjustments do not drift", func(t *testing.T) {
		item := createTestStockItem(t, "0", "0")
		for i := 0; i < 1000; i++ {
			_, err := item.ApplyDelta(OperationIncoming, dec("0.1"), nil, "", nil)
			require.NoError(t, err)
		}
		assert.Equal(t, "100", item.TotalQuantity.String())
	})
}

func TestStockItem_Reserve(t *testing.T) {
	t.Run("reserves within availability", func(t *testing.T) {
		item := createTestStockItem(t, "100", "0")

		require.NoError(t, item.Reserve(dec("30")))

		assert.True(t, item.ReservedQuantity.Equal(dec("30")))
		assert.True(t, item.AvailableQuantity().Equal(dec("70")))
	})

	t.Run("rejects over-reservation without mutation", func(t *testing.T) {
		item := createTestStockItem(t, "100", "30")

		err := item.Reserve(dec("80"))

		var stockErr *InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		assert.True(t, stockErr.Available.Equal(dec("70")))
		assert.True(t, item.ReservedQuantity.Equal(dec("30")))
		assert.True(t, item.TotalQuantity.Equal(dec("100")))
	})

	t.Run("rejects non-positive units", func(t *testing.T) {
		item := createTestStockItem(t, "100", "0")
		require.Error(t, item.Reserve(decimal.Zero))
	})
}

func TestStockItem_Release(t *testing.T) {
	t.Run("releases part of reservation", func(t *testing.T) {
		item := createTestStockItem(t, "100", "30")
		assert.Nil(t, item.Release(dec("10")))
		assert.True(t, item.ReservedQuantity.Equal(dec("20")))
	})

	t.Run("clamps at zero and reports anomaly", func(t *testing.T) {
		item := createTestStockItem(t, "100", "5")

		anomaly := item.Release(dec("8"))

		require.NotNil(t, anomaly)
		assert.True(t, anomaly.Reserved.Equal(dec("5")))
		assert.True(t, anomaly.Requested.Equal(dec("8")))
		assert.True(t, item.ReservedQuantity.IsZero())
	})
}

func TestStockItem_AdjustReservation(t *testing.T) {
	t.Run("growth is validated against the increment only", func(t *testing.T) {
		item := createTestStockItem(t, "10", "8")
		_, err := item.AdjustReservation(dec("8"), dec("10"))
		require.NoError(t, err)
		assert.True(t, item.ReservedQuantity.Equal(dec("10")))

		_, err = item.AdjustReservation(dec("10"), dec("11"))
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		assert.True(t, item.ReservedQuantity.Equal(dec("10")))
	})

	t.Run("shrinking always succeeds", func(t *testing.T) {
		item := createTestStockItem(t, "0", "10")
		anomaly, err := item.AdjustReservation(dec("10"), dec("4"))
		require.NoError(t, err)
		assert.Nil(t, anomaly)
		assert.True(t, item.ReservedQuantity.Equal(dec("4")))
	})

	t.Run("equal quantities are a no-op", func(t *testing.T) {
		item := createTestStockItem(t, "10", "5")
		_, err := item.AdjustReservation(dec("5"), dec("5"))
		require.NoError(t, err)
		assert.Empty(t, item.GetDomainEvents())
	})
}

func TestStockItem_CommitReservation(t *testing.T) {
	lineID := uuid.New()
	actor := uuid.New()

	t.Run("converts reservation into deduction", func(t *testing.T) {
		item := createTestStockItem(t, "100", "20")

		entry, anomaly, err := item.CommitReservation(dec("20"), lineID, &actor, "shipment")

		require.NoError(t, err)
		assert.Nil(t, anomaly)
		assert.True(t, item.TotalQuantity.Equal(dec("80")))
		assert.True(t, item.ReservedQuantity.IsZero())
		assert.Equal(t, OperationOutgoing, entry.Operation)
		assert.True(t, entry.Delta.Equal(dec("-20")))
		assert.Equal(t, &lineID, entry.ShipmentItemID)
	})

	t.Run("own reservation is not counted against availability", func(t *testing.T) {
		item := createTestStockItem(t, "20", "20")
		_, _, err := item.CommitReservation(dec("20"), lineID, nil, "")
		require.NoError(t, err)
		assert.True(t, item.TotalQuantity.IsZero())
	})

	t.Run("shortfall names the line", func(t *testing.T) {
		item := createTestStockItem(t, "15", "20")

		_, _, err := item.CommitReservation(dec("20"), lineID, nil, "")

		var stockErr *InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		require.NotNil(t, stockErr.LineID)
		assert.Equal(t, lineID, *stockErr.LineID)
		assert.Contains(t, err.Error(), lineID.String())
		assert.True(t, item.TotalQuantity.Equal(dec("15")))
	})

	t.Run("missing reservation is an anomaly, not a failure", func(t *testing.T) {
		item := createTestStockItem(t, "50", "0")
		_, anomaly, err := item.CommitReservation(dec("5"), lineID, nil, "")
		require.NoError(t, err)
		require.NotNil(t, anomaly)
		assert.True(t, item.TotalQuantity.Equal(dec("45")))
		assert.True(t, item.ReservedQuantity.IsZero())
	})
}

func TestStockItem_HasAnomaly(t *testing.T) {
	assert.False(t, createTestStockItem(t, "10", "10").HasAnomaly())
	assert.True(t, createTestStockItem(t, "10", "11").HasAnomaly())
	assert.True(t, createTestStockItem(t, "10", "-1").HasAnomaly())
}

func TestStockItem_RejectsUnstorableScale(t *testing.T) {
	item := createTestStockItem(t, "10", "0")

	_, err := item.ApplyDelta(OperationIncoming, dec("1.00005"), nil, "delivery", nil)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)

	_, err = item.ApplyDelta(OperationAdjustment, dec("-0.00001"), nil, "count", nil)
	assert.Error(t, err, "rounds to zero in the store")

	assert.Error(t, item.Reserve(dec("0.12345")))
	assert.Error(t, item.UpdatePrice(dec("9.99999")))

	assert.True(t, item.TotalQuantity.Equal(dec("10")))
	assert.True(t, item.ReservedQuantity.IsZero())
	assert.Empty(t, item.GetDomainEvents())

	_, err = item.ApplyDelta(OperationIncoming, dec("1.00010"), nil, "delivery", nil)
	require.NoError(t, err, "trailing zeros fit the scale")
}
