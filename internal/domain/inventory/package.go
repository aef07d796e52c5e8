package inventory

import (
	"strings"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Package is a fixed-size bundle of a stock item. It has no quantity of its
// own; bundle counts are derived from the item on every read.
type Package struct {
	shared.BaseEntity
	ItemID     uuid.UUID
	Name       string
	BundleSize decimal.Decimal
	Price      decimal.Decimal
}

// NewPackage creates a bundle of bundleSize base units of item
func NewPackage(item *StockItem, name string, bundleSize, price decimal.Decimal) (*Package, error) {
	if item == nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Package must reference a stock item")
	}
	if !bundleSize.IsPositive() {
		return nil, shared.NewDomainError("INVALID_BUNDLE_SIZE", "Bundle size must be positive")
	}
	if err := shared.CheckScale("INVALID_BUNDLE_SIZE", "Bundle size", bundleSize); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if err := shared.CheckScale("INVALID_PRICE", "Price", price); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = item.Name + " x" + bundleSize.String()
	}
	return &Package{
		BaseEntity: shared.NewBaseEntity(),
		ItemID:     item.ID,
		Name:       name,
		BundleSize: bundleSize,
		Price:      price,
	}, nil
}

// Ref returns the tagged reference for this package
func (p *Package) Ref() ItemRef {
	return ItemRef{Kind: ItemKindPackage, ID: p.ID}
}

// BaseUnits converts a bundle count into base units of the item
func (p *Package) BaseUnits(bundles decimal.Decimal) decimal.Decimal {
	return bundles.Mul(p.BundleSize)
}

// AvailableBundles returns floor(item available / bundle size)
func (p *Package) AvailableBundles(item *StockItem) decimal.Decimal {
	return FloorDiv(item.AvailableQuantity(), p.BundleSize)
}

// TotalBundles returns floor(item total / bundle size)
func (p *Package) TotalBundles(item *StockItem) decimal.Decimal {
	return FloorDiv(item.TotalQuantity, p.BundleSize)
}

// FloorDiv divides exactly and rounds toward negative infinity. divisor must be positive.
func FloorDiv(dividend, divisor decimal.Decimal) decimal.Decimal {
	q, r := dividend.QuoRem(divisor, 0)
	if r.IsNegative() {
		q = q.Sub(decimal.NewFromInt(1))
	}
	return q
}
