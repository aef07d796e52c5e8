package models

import (
	"time"

	"github.com/erp/stockcore/internal/domain/production"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductionOrderModel is the persistence model for a production order.
// The order status is derived from its items and has no column.
type ProductionOrderModel struct {
	AggregateModel
	Note      string    `gorm:"type:text;not null;default:''"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`
	DueDate   *time.Time
	Items     []ProductionOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (ProductionOrderModel) TableName() string {
	return "production_orders"
}

// ToDomain converts the model to a domain ProductionOrder
func (m *ProductionOrderModel) ToDomain() *production.ProductionOrder {
	o := &production.ProductionOrder{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Note:              m.Note,
		CreatedBy:         m.CreatedBy,
		DueDate:           m.DueDate,
		Items:             make([]production.ProductionOrderItem, len(m.Items)),
	}
	for i, it := range m.Items {
		o.Items[i] = production.ProductionOrderItem{
			ID:                it.ID,
			OrderID:           it.OrderID,
			StockItemID:       it.StockItemID,
			QuantityRequested: it.QuantityRequested,
			QuantityPlanned:   it.QuantityPlanned,
			QuantityProduced:  it.QuantityProduced,
			CreatedAt:         it.CreatedAt,
			UpdatedAt:         it.UpdatedAt,
		}
	}
	return o
}

// ProductionOrderModelFromDomain creates header and item models from a domain ProductionOrder
func ProductionOrderModelFromDomain(o *production.ProductionOrder) *ProductionOrderModel {
	m := &ProductionOrderModel{
		Note:      o.Note,
		CreatedBy: o.CreatedBy,
		DueDate:   o.DueDate,
		Items:     make([]ProductionOrderItemModel, len(o.Items)),
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	for i, it := range o.Items {
		m.Items[i] = ProductionOrderItemModel{
			BaseModel: BaseModel{
				ID:        it.ID,
				CreatedAt: it.CreatedAt,
				UpdatedAt: it.UpdatedAt,
			},
			OrderID:           o.ID,
			StockItemID:       it.StockItemID,
			QuantityRequested: it.QuantityRequested,
			QuantityPlanned:   it.QuantityPlanned,
			QuantityProduced:  it.QuantityProduced,
		}
	}
	return m
}

// ProductionOrderItemModel is one requested product of an order
type ProductionOrderItemModel struct {
	BaseModel
	OrderID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_production_order_items_order_item,priority:1"`
	StockItemID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_production_order_items_order_item,priority:2"`
	QuantityRequested decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityPlanned   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QuantityProduced  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductionOrderItemModel) TableName() string {
	return "production_order_items"
}

// WorkOrderModel is the persistence model for a work order
type WorkOrderModel struct {
	BaseModel
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	StockItemID uuid.UUID       `gorm:"type:uuid;not null"`
	Target      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Produced    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ShiftDate   time.Time       `gorm:"not null"`
	Status      string          `gorm:"type:varchar(16);not null"`
	CompletedBy *uuid.UUID      `gorm:"type:uuid"`
	CompletedAt *time.Time
}

// TableName returns the table name for GORM
func (WorkOrderModel) TableName() string {
	return "work_orders"
}

// ToDomain converts the model to a domain WorkOrder
func (m *WorkOrderModel) ToDomain() *production.WorkOrder {
	return &production.WorkOrder{
		ID:          m.ID,
		OrderID:     m.OrderID,
		OrderItemID: m.OrderItemID,
		StockItemID: m.StockItemID,
		Target:      m.Target,
		Produced:    m.Produced,
		ShiftDate:   m.ShiftDate,
		Status:      production.WorkOrderStatus(m.Status),
		CompletedBy: m.CompletedBy,
		CompletedAt: m.CompletedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// WorkOrderModelFromDomain creates a new model from a domain WorkOrder
func WorkOrderModelFromDomain(w *production.WorkOrder) *WorkOrderModel {
	return &WorkOrderModel{
		BaseModel: BaseModel{
			ID:        w.ID,
			CreatedAt: w.CreatedAt,
			UpdatedAt: w.UpdatedAt,
		},
		OrderID:     w.OrderID,
		OrderItemID: w.OrderItemID,
		StockItemID: w.StockItemID,
		Target:      w.Target,
		Produced:    w.Produced,
		ShiftDate:   w.ShiftDate,
		Status:      string(w.Status),
		CompletedBy: w.CompletedBy,
		CompletedAt: w.CompletedAt,
	}
}
