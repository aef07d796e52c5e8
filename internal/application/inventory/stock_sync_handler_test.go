package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSyncPublisher struct {
	updates []AvailabilityUpdate
	err     error
}

func (p *recordingSyncPublisher) PublishAvailability(_ context.Context, update AvailabilityUpdate) error {
	if p.err != nil {
		return p.err
	}
	p.updates = append(p.updates, update)
	return nil
}

func quantityChanged(t *testing.T) *inventory.StockQuantityChangedEvent {
	t.Helper()
	item := newStockedItem(t, 10, 3)
	return inventory.NewStockQuantityChangedEvent(item, "RESERVE")
}

func TestStockSyncHandler_ForwardsUpdate(t *testing.T) {
	publisher := &recordingSyncPublisher{}
	h := NewStockSyncHandler(publisher, newMemoryIdempotency(), time.Hour, nil)
	event := quantityChanged(t)

	require.NoError(t, h.Handle(context.Background(), event))

	require.Len(t, publisher.updates, 1)
	update := publisher.updates[0]
	assert.Equal(t, event.EventID(), update.EventID)
	assert.Equal(t, event.ItemID, update.ItemID)
	assert.Equal(t, "PRODUCT", update.ItemKind)
	assert.Equal(t, "RESERVE", update.Cause)
	assert.True(t, update.Available.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, []string{inventory.EventTypeStockQuantityChanged}, h.EventTypes())
}

func TestStockSyncHandler_SkipsRedelivery(t *testing.T) {
	publisher := &recordingSyncPublisher{}
	h := NewStockSyncHandler(publisher, newMemoryIdempotency(), time.Hour, nil)
	event := quantityChanged(t)

	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))

	assert.Len(t, publisher.updates, 1)
}

func TestStockSyncHandler_FailedPublishCanBeRetried(t *testing.T) {
	publisher := &recordingSyncPublisher{err: errors.New("stream unavailable")}
	store := newMemoryIdempotency()
	h := NewStockSyncHandler(publisher, store, time.Hour, nil)
	event := quantityChanged(t)

	assert.Error(t, h.Handle(context.Background(), event))
	assert.Empty(t, store.keys, "a failed delivery must not be marked")

	publisher.err = nil
	require.NoError(t, h.Handle(context.Background(), event))
	assert.Len(t, publisher.updates, 1)
}

func TestStockSyncHandler_MarkFailureDoesNotFail(t *testing.T) {
	publisher := &recordingSyncPublisher{}
	store := newMemoryIdempotency()
	store.markErr = errors.New("redis down")
	h := NewStockSyncHandler(publisher, store, time.Hour, nil)

	assert.NoError(t, h.Handle(context.Background(), quantityChanged(t)))
	assert.Len(t, publisher.updates, 1)
}

func TestStockSyncHandler_WithoutIdempotencyStore(t *testing.T) {
	publisher := &recordingSyncPublisher{}
	h := NewStockSyncHandler(publisher, nil, 0, nil)
	event := quantityChanged(t)

	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))

	assert.Len(t, publisher.updates, 2)
}

func TestStockSyncHandler_RejectsOtherEvents(t *testing.T) {
	h := NewStockSyncHandler(&recordingSyncPublisher{}, nil, 0, nil)
	base := shared.NewBaseDomainEvent("Other", "Other", newStockedItem(t, 0, 0).ID)

	assert.Error(t, h.Handle(context.Background(), &base))
}
