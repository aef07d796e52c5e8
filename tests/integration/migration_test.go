//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/erp/stockcore/internal/infrastructure/migration"
	"github.com/erp/stockcore/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, tdb *TestDB, table string) bool {
	t.Helper()
	var exists bool
	err := tdb.SqlDB.QueryRowContext(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM pg_tables WHERE schemaname = 'public' AND tablename = $1)`, table,
	).Scan(&exists)
	require.NoError(t, err)
	return exists
}

func TestMigrator_UpDownVersion(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	available, err := migration.ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, available)
	latest := available[len(available)-1].Version

	m, err := migration.New(tdb.SqlDB, migrations.FS, nil)
	require.NoError(t, err)

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, latest, version, "NewTestDB applies every migration")
	assert.False(t, dirty)

	// applying again is a no-op
	require.NoError(t, m.Up())

	require.NoError(t, m.Steps(-1))
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, latest-1, version)
	assert.False(t, tableExists(t, tdb, "work_orders"))
	assert.True(t, tableExists(t, tdb, "ledger_entries"))

	require.NoError(t, m.Down())
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, tableExists(t, tdb, "stock_items"))

	require.NoError(t, m.GoTo(2))
	assert.True(t, tableExists(t, tdb, "ledger_entries"))
	assert.False(t, tableExists(t, tdb, "shipments"))

	require.NoError(t, m.Up())
	for _, table := range []string{"stock_items", "packages", "ledger_entries", "shipments", "shipment_items",
		"inventory_counts", "inventory_count_items", "production_orders", "production_order_items", "work_orders"} {
		assert.True(t, tableExists(t, tdb, table), table)
	}
}

func TestMigrations_EnforceStockConstraints(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewSharedTestDB(t)
	ctx := context.Background()

	_, err := tdb.SqlDB.ExecContext(ctx, `
		INSERT INTO shipment_items (id, shipment_id, base_item_id, quantity, price)
		VALUES (gen_random_uuid(), gen_random_uuid(), gen_random_uuid(), 1, 1)`)
	assert.Error(t, err, "a line must reference exactly one of stock item or package")

	_, err = tdb.SqlDB.ExecContext(ctx, `
		INSERT INTO shipments (id, destination, created_by, status)
		VALUES (gen_random_uuid(), 'Depot', gen_random_uuid(), 'LOST')`)
	assert.Error(t, err, "unknown shipment status")
}
