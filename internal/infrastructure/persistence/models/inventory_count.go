package models

import (
	"time"

	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryCountModel is the persistence model for a stocktaking session
type InventoryCountModel struct {
	AggregateModel
	UserID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Note         string    `gorm:"type:text;not null;default:''"`
	Status       string    `gorm:"type:varchar(16);not null;index"`
	CompletedAt  *time.Time
	ReconciledAt *time.Time
	Items        []InventoryCountItemModel `gorm:"foreignKey:CountID;references:ID"`
}

// TableName returns the table name for GORM
func (InventoryCountModel) TableName() string {
	return "inventory_counts"
}

// ToDomain converts the model, including loaded lines, to a domain InventoryCount
func (m *InventoryCountModel) ToDomain() *inventory.InventoryCount {
	c := &inventory.InventoryCount{
		BaseAggregateRoot: m.ToAggregateRoot(),
		UserID:            m.UserID,
		Note:              m.Note,
		Status:            inventory.CountStatus(m.Status),
		CompletedAt:       m.CompletedAt,
		ReconciledAt:      m.ReconciledAt,
		Items:             make([]inventory.InventoryCountItem, len(m.Items)),
	}
	for i, line := range m.Items {
		c.Items[i] = inventory.InventoryCountItem{
			ID:             line.ID,
			CountID:        line.CountID,
			ItemID:         line.ItemID,
			ItemKind:       inventory.ItemKind(line.ItemKind),
			SystemQuantity: line.SystemQuantity,
			ActualQuantity: line.ActualQuantity,
			CreatedAt:      line.CreatedAt,
			UpdatedAt:      line.UpdatedAt,
		}
	}
	return c
}

// InventoryCountModelFromDomain creates header and line models from a domain InventoryCount
func InventoryCountModelFromDomain(c *inventory.InventoryCount) *InventoryCountModel {
	m := &InventoryCountModel{
		UserID:       c.UserID,
		Note:         c.Note,
		Status:       string(c.Status),
		CompletedAt:  c.CompletedAt,
		ReconciledAt: c.ReconciledAt,
		Items:        make([]InventoryCountItemModel, len(c.Items)),
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	for i, line := range c.Items {
		m.Items[i] = InventoryCountItemModel{
			BaseModel: BaseModel{
				ID:        line.ID,
				CreatedAt: line.CreatedAt,
				UpdatedAt: line.UpdatedAt,
			},
			CountID:        c.ID,
			ItemID:         line.ItemID,
			ItemKind:       string(line.ItemKind),
			SystemQuantity: line.SystemQuantity,
			ActualQuantity: line.ActualQuantity,
		}
	}
	return m
}

// InventoryCountItemModel is one counted item; (count_id, item_id) is unique
type InventoryCountItemModel struct {
	BaseModel
	CountID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_count_items_count_item,priority:1"`
	ItemID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_count_items_count_item,priority:2"`
	ItemKind       string          `gorm:"type:varchar(16);not null"`
	SystemQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ActualQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InventoryCountItemModel) TableName() string {
	return "inventory_count_items"
}
