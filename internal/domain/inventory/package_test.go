package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPackage(t *testing.T) {
	item := createTestStockItem(t, "0", "0")

	t.Run("defaults name from item", func(t *testing.T) {
		pkg, err := NewPackage(item, "", dec("10"), dec("100"))
		require.NoError(t, err)
		assert.Equal(t, "Steel sheet x10", pkg.Name)
		assert.Equal(t, item.ID, pkg.ItemID)
		assert.Equal(t, ItemKindPackage, pkg.Ref().Kind)
	})

	t.Run("rejects non-positive bundle size", func(t *testing.T) {
		_, err := NewPackage(item, "box", decimal.Zero, decimal.Zero)
		require.Error(t, err)
		_, err = NewPackage(item, "box", dec("-2"), decimal.Zero)
		require.Error(t, err)
	})
}

func TestPackage_Bundles(t *testing.T) {
	tests := []struct {
		name      string
		total     string
		reserved  string
		size      string
		available string
		all       string
	}{
		{"floors available", "85", "0", "10", "8", "8"},
		{"reservation reduces available only", "100", "25", "10", "7", "10"},
		{"fractional bundle size", "10", "0", "2.5", "4", "4"},
		{"negative available floors downward", "5", "12", "10", "-1", "0"},
		{"exact multiple", "30", "0", "10", "3", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := createTestStockItem(t, tt.total, tt.reserved)
			pkg, err := NewPackage(item, "box", dec(tt.size), decimal.Zero)
			require.NoError(t, err)

			assert.Equal(t, tt.available, pkg.AvailableBundles(item).String())
			assert.Equal(t, tt.all, pkg.TotalBundles(item).String())
		})
	}
}

func TestPackage_BaseUnits(t *testing.T) {
	item := createTestStockItem(t, "0", "0")
	pkg, err := NewPackage(item, "", dec("12"), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "36", pkg.BaseUnits(dec("3")).String())
}

func TestNewPackage_RejectsUnstorableScale(t *testing.T) {
	item := createTestStockItem(t, "0", "0")

	_, err := NewPackage(item, "box", dec("0.00001"), decimal.Zero)
	assert.Error(t, err)
	_, err = NewPackage(item, "box", dec("6"), dec("1.23456"))
	assert.Error(t, err)
}
