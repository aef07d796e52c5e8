package models

import (
	"time"

	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockItemModel is the persistence model for materials and products
type StockItemModel struct {
	AggregateModel
	Kind             string          `gorm:"type:varchar(16);not null;index"`
	Code             string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Barcode          *string         `gorm:"type:varchar(64);uniqueIndex"`
	Name             string          `gorm:"type:varchar(200);not null"`
	Unit             string          `gorm:"type:varchar(16);not null;default:'pcs'"`
	Price            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalQuantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReservedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockItemModel) TableName() string {
	return "stock_items"
}

// ToDomain converts the model to a domain StockItem
func (m *StockItemModel) ToDomain() *inventory.StockItem {
	item := &inventory.StockItem{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Kind:              inventory.ItemKind(m.Kind),
		Code:              m.Code,
		Name:              m.Name,
		Unit:              m.Unit,
		Price:             m.Price,
		TotalQuantity:     m.TotalQuantity,
		ReservedQuantity:  m.ReservedQuantity,
	}
	if m.Barcode != nil {
		item.Barcode = *m.Barcode
	}
	return item
}

// FromDomain populates the model from a domain StockItem
func (m *StockItemModel) FromDomain(i *inventory.StockItem) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.Kind = string(i.Kind)
	m.Code = i.Code
	m.Barcode = nil
	if i.Barcode != "" {
		barcode := i.Barcode
		m.Barcode = &barcode
	}
	m.Name = i.Name
	m.Unit = i.Unit
	m.Price = i.Price
	m.TotalQuantity = i.TotalQuantity
	m.ReservedQuantity = i.ReservedQuantity
}

// StockItemModelFromDomain creates a new model from a domain StockItem
func StockItemModelFromDomain(i *inventory.StockItem) *StockItemModel {
	m := &StockItemModel{}
	m.FromDomain(i)
	return m
}

// PackageModel is the persistence model for bundles
type PackageModel struct {
	BaseModel
	ItemID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_packages_item_bundle,priority:1"`
	Name       string          `gorm:"type:varchar(200);not null"`
	BundleSize decimal.Decimal `gorm:"type:decimal(18,4);not null;uniqueIndex:idx_packages_item_bundle,priority:2"`
	Price      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (PackageModel) TableName() string {
	return "packages"
}

// ToDomain converts the model to a domain Package
func (m *PackageModel) ToDomain() *inventory.Package {
	return &inventory.Package{
		BaseEntity: m.BaseModel.ToDomain(),
		ItemID:     m.ItemID,
		Name:       m.Name,
		BundleSize: m.BundleSize,
		Price:      m.Price,
	}
}

// PackageModelFromDomain creates a new model from a domain Package
func PackageModelFromDomain(p *inventory.Package) *PackageModel {
	m := &PackageModel{
		ItemID:     p.ItemID,
		Name:       p.Name,
		BundleSize: p.BundleSize,
		Price:      p.Price,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// LedgerEntryModel is the persistence model for the append-only ledger.
// The auto-increment ID gives a strict insertion order for history paging.
type LedgerEntryModel struct {
	ID             int64           `gorm:"primaryKey;autoIncrement"`
	ItemID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_entries_item,priority:1"`
	ItemKind       string          `gorm:"type:varchar(16);not null"`
	Operation      string          `gorm:"type:varchar(16);not null"`
	Delta          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceAfter   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ActorID        *uuid.UUID      `gorm:"type:uuid"`
	Reason         string          `gorm:"type:text;not null;default:''"`
	ShipmentItemID *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the model to a domain LedgerEntry
func (m *LedgerEntryModel) ToDomain() *inventory.LedgerEntry {
	return &inventory.LedgerEntry{
		ID:             m.ID,
		ItemID:         m.ItemID,
		ItemKind:       inventory.ItemKind(m.ItemKind),
		Operation:      inventory.Operation(m.Operation),
		Delta:          m.Delta,
		BalanceAfter:   m.BalanceAfter,
		ActorID:        m.ActorID,
		Reason:         m.Reason,
		ShipmentItemID: m.ShipmentItemID,
		CreatedAt:      m.CreatedAt,
	}
}

// LedgerEntryModelFromDomain creates a new model from a domain LedgerEntry
func LedgerEntryModelFromDomain(e *inventory.LedgerEntry) *LedgerEntryModel {
	return &LedgerEntryModel{
		ID:             e.ID,
		ItemID:         e.ItemID,
		ItemKind:       string(e.ItemKind),
		Operation:      string(e.Operation),
		Delta:          e.Delta,
		BalanceAfter:   e.BalanceAfter,
		ActorID:        e.ActorID,
		Reason:         e.Reason,
		ShipmentItemID: e.ShipmentItemID,
		CreatedAt:      e.CreatedAt,
	}
}
