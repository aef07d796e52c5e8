package persistence

import (
	"context"
	"testing"

	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormLedgerRepository_AppendAndPage(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormLedgerRepository(db)
	ctx := context.Background()
	item := createItem(t, db, "L-1", "0", "0")
	actor := uuid.New()

	var ids []int64
	for i := 0; i < 5; i++ {
		entry, err := item.ApplyDelta(inventory.OperationIncoming, dec("2"), &actor, "delivery", nil)
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, entry))
		require.Positive(t, entry.ID)
		ids = append(ids, entry.ID)
	}
	other := createItem(t, db, "L-2", "0", "0")
	entry, err := other.ApplyDelta(inventory.OperationIncoming, dec("1"), nil, "", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, entry))

	first, err := repo.ListByItem(ctx, item.ID, 0, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, ids[4], first[0].ID)
	assert.Equal(t, ids[3], first[1].ID)
	assert.True(t, first[0].BalanceAfter.Equal(dec("10")))
	assert.Equal(t, inventory.OperationIncoming, first[0].Operation)
	require.NotNil(t, first[0].ActorID)
	assert.Equal(t, actor, *first[0].ActorID)

	next, err := repo.ListByItem(ctx, item.ID, first[1].ID, 10)
	require.NoError(t, err)
	require.Len(t, next, 3)
	assert.Equal(t, ids[0], next[2].ID)

	n, err := repo.CountByItem(ctx, item.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}

func TestGormLedgerRepository_ListByShipmentItem(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormLedgerRepository(db)
	ctx := context.Background()
	item := createItem(t, db, "L-S", "10", "4")
	lineID := uuid.New()

	entry, _, err := item.CommitReservation(dec("4"), lineID, nil, "shipment")
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, entry))

	entries, err := repo.ListByShipmentItem(ctx, lineID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, inventory.OperationOutgoing, entries[0].Operation)
	assert.True(t, entries[0].Delta.Equal(dec("-4")))
	require.NotNil(t, entries[0].ShipmentItemID)
	assert.Equal(t, lineID, *entries[0].ShipmentItemID)
}
