package persistence

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newMockGormDB opens GORM with the Postgres dialect over sqlmock
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), nil)
	require.NoError(t, err)
	return db, mock, mockDB
}

// newSQLiteDB opens a private in-memory database with all tables
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// createItem inserts a product with the given quantities
func createItem(t *testing.T, db *gorm.DB, code, total, reserved string) *inventory.StockItem {
	t.Helper()
	item, err := inventory.NewStockItem(inventory.ItemKindProduct, code, "Item "+code, "pcs", dec("1"))
	require.NoError(t, err)
	item.TotalQuantity = dec(total)
	item.ReservedQuantity = dec(reserved)
	require.NoError(t, NewGormStockItemRepository(db).Create(t.Context(), item))
	return item
}
