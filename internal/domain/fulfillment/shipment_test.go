package fulfillment

import (
	"errors"
	"testing"

	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newTestItem(t *testing.T, total, reserved string) *inventory.StockItem {
	t.Helper()
	item, err := inventory.NewStockItem(inventory.ItemKindProduct, "PRD-"+uuid.NewString()[:8], "Chair", "pcs", dec("25"))
	require.NoError(t, err)
	item.TotalQuantity = dec(total)
	item.ReservedQuantity = dec(reserved)
	item.ClearDomainEvents()
	return item
}

func newTestShipment(t *testing.T) *Shipment {
	t.Helper()
	s, err := NewShipment("Main warehouse", "Berlin", "ACME GmbH", uuid.New())
	require.NoError(t, err)
	return s
}

func addLine(t *testing.T, s *Shipment, item *inventory.StockItem, qty string) *ShipmentItem {
	t.Helper()
	line, err := NewStockItemLine(s.ID, item, dec(qty))
	require.NoError(t, err)
	require.NoError(t, s.AddLine(line))
	return line
}

func TestShipmentItem_Exclusivity(t *testing.T) {
	id := uuid.New()
	one := decimal.NewFromInt(1)

	_, err := NewShipmentItem(uuid.New(), &id, &id, id, one, one, one)
	var exclusive *MutualExclusivityError
	require.True(t, errors.As(err, &exclusive))
	assert.True(t, exclusive.HasItem && exclusive.HasPackage)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = NewShipmentItem(uuid.New(), nil, nil, id, one, one, one)
	require.True(t, errors.As(err, &exclusive))
	assert.False(t, exclusive.HasItem || exclusive.HasPackage)

	nilID := uuid.Nil
	_, err = NewShipmentItem(uuid.New(), &nilID, nil, id, one, one, one)
	require.True(t, errors.As(err, &exclusive))
}

func TestShipmentItem_Derived(t *testing.T) {
	item := newTestItem(t, "100", "0")
	pkg, err := inventory.NewPackage(item, "Box of 10", dec("10"), dec("200"))
	require.NoError(t, err)

	line, err := NewPackageLine(uuid.New(), pkg, dec("3"))
	require.NoError(t, err)

	assert.True(t, line.IsPackage())
	assert.Equal(t, item.ID, line.BaseItemID)
	assert.Equal(t, "30", line.BaseUnits().String())
	assert.Equal(t, "600", line.TotalPrice().String())
	assert.Equal(t, "20", line.PricePerUnit().String())
	assert.Equal(t, inventory.ItemKindPackage, line.Ref(item.Kind).Kind)

	t.Run("price is frozen at creation", func(t *testing.T) {
		plain, err := NewStockItemLine(uuid.New(), item, dec("2"))
		require.NoError(t, err)
		require.NoError(t, item.UpdatePrice(dec("99")))
		assert.Equal(t, "25", plain.Price.String())
		assert.Equal(t, "50", plain.TotalPrice().String())
	})
}

func TestShipment_Predicates(t *testing.T) {
	s := newTestShipment(t)
	assert.True(t, s.CanBeEdited())
	assert.True(t, s.CanBeDeleted())
	assert.False(t, s.CanBePackaged(), "no lines")
	assert.False(t, s.CanBeShipped(), "no lines")

	addLine(t, s, newTestItem(t, "10", "1"), "1")
	assert.True(t, s.CanBePackaged())
	assert.True(t, s.CanBeShipped())

	require.NoError(t, s.Package())
	assert.True(t, s.CanBeEdited())
	assert.False(t, s.CanBePackaged())
	assert.True(t, s.CanBeShipped())

	s.Status = ShipmentStatusShipped
	assert.False(t, s.CanBeEdited())
	assert.False(t, s.CanBeDeleted())
	assert.False(t, s.CanBeShipped())
}

func TestShipment_Package(t *testing.T) {
	s := newTestShipment(t)
	err := s.Package()
	var illegal *shared.IllegalStateTransitionError
	require.True(t, errors.As(err, &illegal))
	assert.Contains(t, err.Error(), "no lines")
}

func TestShipment_Ship(t *testing.T) {
	actor := uuid.New()

	t.Run("commits reservations and marks shipped", func(t *testing.T) {
		s := newTestShipment(t)
		item := newTestItem(t, "100", "20")
		line := addLine(t, s, item, "20")

		result, err := s.Ship(map[uuid.UUID]*inventory.StockItem{item.ID: item}, actor)

		require.NoError(t, err)
		assert.Equal(t, ShipmentStatusShipped, s.Status)
		assert.NotNil(t, s.ShippedAt)
		assert.Equal(t, &actor, s.ProcessedBy)
		assert.True(t, item.TotalQuantity.Equal(dec("80")))
		assert.True(t, item.ReservedQuantity.IsZero())
		require.Len(t, result.Entries, 1)
		assert.True(t, result.Entries[0].Delta.Equal(dec("-20")))
		assert.Equal(t, line.ID, *result.Entries[0].ShipmentItemID)
		assert.Empty(t, result.Anomalies)
		require.Len(t, s.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeShipmentShipped, s.GetDomainEvents()[0].EventType())
	})

	t.Run("already shipped", func(t *testing.T) {
		s := newTestShipment(t)
		item := newTestItem(t, "10", "1")
		addLine(t, s, item, "1")
		items := map[uuid.UUID]*inventory.StockItem{item.ID: item}
		_, err := s.Ship(items, actor)
		require.NoError(t, err)

		_, err = s.Ship(items, actor)

		var already *AlreadyShippedError
		require.True(t, errors.As(err, &already))
		assert.True(t, item.TotalQuantity.Equal(dec("9")))
	})

	t.Run("empty shipment cannot ship", func(t *testing.T) {
		s := newTestShipment(t)
		_, err := s.Ship(nil, actor)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	t.Run("shortfall on second line leaves status untouched", func(t *testing.T) {
		s := newTestShipment(t)
		ok := newTestItem(t, "10", "5")
		short := newTestItem(t, "3", "5")
		addLine(t, s, ok, "5")
		bad := addLine(t, s, short, "5")

		_, err := s.Ship(map[uuid.UUID]*inventory.StockItem{ok.ID: ok, short.ID: short}, actor)

		var stockErr *inventory.InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		assert.Equal(t, bad.ID, *stockErr.LineID)
		assert.Equal(t, ShipmentStatusPending, s.Status)
		assert.Nil(t, s.ShippedAt)
	})

	t.Run("two lines on the same item", func(t *testing.T) {
		s := newTestShipment(t)
		item := newTestItem(t, "30", "30")
		pkg, err := inventory.NewPackage(item, "", dec("10"), dec("1"))
		require.NoError(t, err)
		addLine(t, s, item, "10")
		pl, err := NewPackageLine(s.ID, pkg, dec("2"))
		require.NoError(t, err)
		require.NoError(t, s.AddLine(pl))

		_, err = s.Ship(map[uuid.UUID]*inventory.StockItem{item.ID: item}, actor)

		require.NoError(t, err)
		assert.True(t, item.TotalQuantity.IsZero())
		assert.True(t, item.ReservedQuantity.IsZero())
		assert.Len(t, s.ItemIDs(), 1)
	})
}

func TestShipment_Return(t *testing.T) {
	actor := uuid.New()
	s := newTestShipment(t)
	item := newTestItem(t, "10", "4")
	addLine(t, s, item, "4")
	items := map[uuid.UUID]*inventory.StockItem{item.ID: item}

	_, err := s.Return(items, actor, "")
	require.True(t, errors.Is(err, shared.ErrInvalidState), "pending shipment cannot be returned")

	_, err = s.Ship(items, actor)
	require.NoError(t, err)

	entries, err := s.Return(items, actor, "damaged")

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, inventory.OperationReturn, entries[0].Operation)
	assert.Equal(t, "damaged", entries[0].Reason)
	assert.True(t, item.TotalQuantity.Equal(dec("10")))
	assert.Equal(t, ShipmentStatusReturned, s.Status)
	assert.NotNil(t, s.ReturnedAt)
}

func TestShipment_Lines(t *testing.T) {
	s := newTestShipment(t)
	item := newTestItem(t, "10", "0")
	line := addLine(t, s, item, "2")

	oldUnits, newUnits, err := s.UpdateLineQuantity(line.ID, dec("5"))
	require.NoError(t, err)
	assert.Equal(t, "2", oldUnits.String())
	assert.Equal(t, "5", newUnits.String())

	_, _, err = s.UpdateLineQuantity(uuid.New(), dec("1"))
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	removed, release, err := s.RemoveLine(line.ID)
	require.NoError(t, err)
	assert.True(t, release)
	assert.Equal(t, line.ID, removed.ID)
	assert.Empty(t, s.Items)

	t.Run("removing from a shipped shipment does not release", func(t *testing.T) {
		s := newTestShipment(t)
		line := addLine(t, s, item, "1")
		s.Status = ShipmentStatusShipped
		_, release, err := s.RemoveLine(line.ID)
		require.NoError(t, err)
		assert.False(t, release)
	})

	t.Run("shipped shipment rejects new lines", func(t *testing.T) {
		s := newTestShipment(t)
		s.Status = ShipmentStatusShipped
		l, err := NewStockItemLine(s.ID, item, dec("1"))
		require.NoError(t, err)
		assert.True(t, errors.Is(s.AddLine(l), shared.ErrInvalidState))
	})
}

func TestShipmentStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, ShipmentStatusPending.CanTransitionTo(ShipmentStatusPackaged))
	assert.True(t, ShipmentStatusPending.CanTransitionTo(ShipmentStatusShipped))
	assert.False(t, ShipmentStatusPending.CanTransitionTo(ShipmentStatusReturned))
	assert.True(t, ShipmentStatusShipped.CanTransitionTo(ShipmentStatusReturned))
	assert.False(t, ShipmentStatusReturned.CanTransitionTo(ShipmentStatusShipped))
}

func TestShipmentItem_RejectsUnstorableScale(t *testing.T) {
	s := newTestShipment(t)
	item := newTestItem(t, "10", "0")

	_, err := NewStockItemLine(s.ID, item, dec("1.00001"))
	assert.Error(t, err)

	pkg, err := inventory.NewPackage(item, "half crate", dec("1.5"), dec("10"))
	require.NoError(t, err)
	_, err = NewPackageLine(s.ID, pkg, dec("0.0003"))
	assert.Error(t, err, "0.0003 bundles of 1.5 is 0.00045 base units")

	line := addLine(t, s, item, "2")
	_, _, err = s.UpdateLineQuantity(line.ID, dec("2.00001"))
	assert.Error(t, err)
	assert.True(t, s.FindLine(line.ID).Quantity.Equal(dec("2")))
}
