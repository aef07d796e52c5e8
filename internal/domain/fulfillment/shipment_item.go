package fulfillment

import (
	"time"

	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShipmentItem is one line of a shipment. It references exactly one of a stock
// item or a package. BaseItemID always names the stock item whose quantity the
// line reserves; for package lines it is the package's item. Price and bundle
// size are copied when the line is created and never follow catalog changes.
type ShipmentItem struct {
	ID          uuid.UUID
	ShipmentID  uuid.UUID
	StockItemID *uuid.UUID
	PackageID   *uuid.UUID
	BaseItemID  uuid.UUID
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	BundleSize  decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CheckExclusive validates that exactly one reference is set
func CheckExclusive(stockItemID, packageID *uuid.UUID) error {
	hasItem := stockItemID != nil && *stockItemID != uuid.Nil
	hasPackage := packageID != nil && *packageID != uuid.Nil
	if hasItem == hasPackage {
		return &MutualExclusivityError{HasItem: hasItem, HasPackage: hasPackage}
	}
	return nil
}

// NewShipmentItem builds a line from raw references. Exactly one of stockItemID
// and packageID must be set; bundleSize is 1 for stock item lines.
func NewShipmentItem(shipmentID uuid.UUID, stockItemID, packageID *uuid.UUID, baseItemID uuid.UUID, quantity, price, bundleSize decimal.Decimal) (*ShipmentItem, error) {
	if err := CheckExclusive(stockItemID, packageID); err != nil {
		return nil, err
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if !bundleSize.IsPositive() {
		return nil, shared.NewDomainError("INVALID_BUNDLE_SIZE", "Bundle size must be positive")
	}
	if stockItemID != nil && !bundleSize.Equal(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("INVALID_BUNDLE_SIZE", "Stock item lines have a bundle size of 1")
	}
	if err := checkLineScale(quantity, bundleSize); err != nil {
		return nil, err
	}
	if err := shared.CheckScale("INVALID_PRICE", "Price", price); err != nil {
		return nil, err
	}
	now := time.Now()
	return &ShipmentItem{
		ID:          uuid.New(),
		ShipmentID:  shipmentID,
		StockItemID: stockItemID,
		PackageID:   packageID,
		BaseItemID:  baseItemID,
		Quantity:    quantity,
		Price:       price,
		BundleSize:  bundleSize,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// NewStockItemLine creates a line for quantity base units of item at its current price
func NewStockItemLine(shipmentID uuid.UUID, item *inventory.StockItem, quantity decimal.Decimal) (*ShipmentItem, error) {
	id := item.ID
	return NewShipmentItem(shipmentID, &id, nil, item.ID, quantity, item.Price, decimal.NewFromInt(1))
}

// NewPackageLine creates a line for quantity bundles of pkg at its current price
func NewPackageLine(shipmentID uuid.UUID, pkg *inventory.Package, quantity decimal.Decimal) (*ShipmentItem, error) {
	id := pkg.ID
	return NewShipmentItem(shipmentID, nil, &id, pkg.ItemID, quantity, pkg.Price, pkg.BundleSize)
}

// Ref returns the tagged reference of what the line ships
func (i *ShipmentItem) Ref(kind inventory.ItemKind) inventory.ItemRef {
	if i.PackageID != nil {
		return inventory.ItemRef{Kind: inventory.ItemKindPackage, ID: *i.PackageID}
	}
	return inventory.ItemRef{Kind: kind, ID: i.BaseItemID}
}

// IsPackage returns true for bundle lines
func (i *ShipmentItem) IsPackage() bool {
	return i.PackageID != nil
}

// BaseUnits returns the quantity in base units of the underlying item
func (i *ShipmentItem) BaseUnits() decimal.Decimal {
	return i.BaseUnitsFor(i.Quantity)
}

// BaseUnitsFor converts a line quantity into base units
func (i *ShipmentItem) BaseUnitsFor(quantity decimal.Decimal) decimal.Decimal {
	if i.PackageID == nil {
		return quantity
	}
	return quantity.Mul(i.BundleSize)
}

// TotalPrice returns quantity times the frozen price
func (i *ShipmentItem) TotalPrice() decimal.Decimal {
	return i.Quantity.Mul(i.Price)
}

// PricePerUnit returns the total price spread over base units
func (i *ShipmentItem) PricePerUnit() decimal.Decimal {
	units := i.BaseUnits()
	if units.IsZero() {
		return decimal.Zero
	}
	return i.TotalPrice().Div(units)
}

// checkLineScale validates both the entered quantity and the base units it
// reserves, since a fractional bundle count multiplies the scale.
func checkLineScale(quantity, bundleSize decimal.Decimal) error {
	if err := shared.CheckScale("INVALID_QUANTITY", "Line quantity", quantity); err != nil {
		return err
	}
	return shared.CheckScale("INVALID_QUANTITY", "Line base units", quantity.Mul(bundleSize))
}
