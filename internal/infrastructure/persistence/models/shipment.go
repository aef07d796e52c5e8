package models

import (
	"time"

	"github.com/erp/stockcore/internal/domain/fulfillment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShipmentModel is the persistence model for the Shipment aggregate root
type ShipmentModel struct {
	AggregateModel
	Sender      string     `gorm:"type:varchar(200);not null;default:''"`
	Destination string     `gorm:"type:varchar(500);not null"`
	Recipient   string     `gorm:"type:varchar(200);not null;default:''"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null"`
	ProcessedBy *uuid.UUID `gorm:"type:uuid"`
	Status      string     `gorm:"type:varchar(16);not null;index"`
	ShippedAt   *time.Time
	ReturnedAt  *time.Time
	Items       []ShipmentItemModel `gorm:"foreignKey:ShipmentID;references:ID"`
}

// TableName returns the table name for GORM
func (ShipmentModel) TableName() string {
	return "shipments"
}

// ToDomain converts the model, including loaded items, to a domain Shipment
func (m *ShipmentModel) ToDomain() *fulfillment.Shipment {
	s := &fulfillment.Shipment{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Sender:            m.Sender,
		Destination:       m.Destination,
		Recipient:         m.Recipient,
		CreatedBy:         m.CreatedBy,
		ProcessedBy:       m.ProcessedBy,
		Status:            fulfillment.ShipmentStatus(m.Status),
		ShippedAt:         m.ShippedAt,
		ReturnedAt:        m.ReturnedAt,
		Items:             make([]fulfillment.ShipmentItem, len(m.Items)),
	}
	for i := range m.Items {
		s.Items[i] = *m.Items[i].ToDomain()
	}
	return s
}

// ShipmentModelFromDomain creates a header model from a domain Shipment; items are saved separately
func ShipmentModelFromDomain(s *fulfillment.Shipment) *ShipmentModel {
	m := &ShipmentModel{
		Sender:      s.Sender,
		Destination: s.Destination,
		Recipient:   s.Recipient,
		CreatedBy:   s.CreatedBy,
		ProcessedBy: s.ProcessedBy,
		Status:      string(s.Status),
		ShippedAt:   s.ShippedAt,
		ReturnedAt:  s.ReturnedAt,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}

// ShipmentItemModel is the persistence model for a shipment line
type ShipmentItemModel struct {
	BaseModel
	ShipmentID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	StockItemID *uuid.UUID      `gorm:"type:uuid;index"`
	PackageID   *uuid.UUID      `gorm:"type:uuid;index"`
	BaseItemID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BundleSize  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:1"`
}

// TableName returns the table name for GORM
func (ShipmentItemModel) TableName() string {
	return "shipment_items"
}

// ToDomain converts the model to a domain ShipmentItem
func (m *ShipmentItemModel) ToDomain() *fulfillment.ShipmentItem {
	return &fulfillment.ShipmentItem{
		ID:          m.ID,
		ShipmentID:  m.ShipmentID,
		StockItemID: m.StockItemID,
		PackageID:   m.PackageID,
		BaseItemID:  m.BaseItemID,
		Quantity:    m.Quantity,
		Price:       m.Price,
		BundleSize:  m.BundleSize,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ShipmentItemModelFromDomain creates a new model from a domain ShipmentItem
func ShipmentItemModelFromDomain(i *fulfillment.ShipmentItem) *ShipmentItemModel {
	return &ShipmentItemModel{
		BaseModel: BaseModel{
			ID:        i.ID,
			CreatedAt: i.CreatedAt,
			UpdatedAt: i.UpdatedAt,
		},
		ShipmentID:  i.ShipmentID,
		StockItemID: i.StockItemID,
		PackageID:   i.PackageID,
		BaseItemID:  i.BaseItemID,
		Quantity:    i.Quantity,
		Price:       i.Price,
		BundleSize:  i.BundleSize,
	}
}
