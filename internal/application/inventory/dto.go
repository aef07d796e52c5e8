package inventory

import (
	"time"

	"github.com/erp/stockcore/internal/domain/fulfillment"
	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/domain/production"
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListFilter carries paging and search options shared by list endpoints
type ListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status"`
	Kind     string `form:"kind"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f ListFilter) toDomain() shared.Filter {
	return shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		Search:   f.Search,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
	}
}

// ItemRefRequest addresses a stock item or a package
type ItemRefRequest struct {
	Kind string    `json:"kind" binding:"required,oneof=MATERIAL PRODUCT PACKAGE"`
	ID   uuid.UUID `json:"id" binding:"required"`
}

// ToItemRef validates and converts the request
func (r ItemRefRequest) ToItemRef() (inventory.ItemRef, error) {
	kind, err := inventory.ParseItemKind(r.Kind)
	if err != nil {
		return inventory.ItemRef{}, err
	}
	return inventory.NewItemRef(kind, r.ID)
}

// ===================== Catalog =====================

// CreateStockItemRequest creates a material or product
type CreateStockItemRequest struct {
	Kind    string          `json:"kind" binding:"required,oneof=MATERIAL PRODUCT"`
	Code    string          `json:"code" binding:"required,max=64"`
	Barcode string          `json:"barcode" binding:"max=64"`
	Name    string          `json:"name" binding:"required,max=200"`
	Unit    string          `json:"unit" binding:"max=20"`
	Price   decimal.Decimal `json:"price"`
}

// UpdatePriceRequest changes an item's catalog price
type UpdatePriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

// StockItemResponse represents a stock item in API responses
type StockItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	Kind              string          `json:"kind"`
	Code              string          `json:"code"`
	Barcode           string          `json:"barcode,omitempty"`
	Name              string          `json:"name"`
	Unit              string          `json:"unit"`
	Price             decimal.Decimal `json:"price"`
	TotalQuantity     decimal.Decimal `json:"total_quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	Anomaly           bool            `json:"anomaly"`
	Version           int             `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToStockItemResponse converts a domain stock item
func ToStockItemResponse(item *inventory.StockItem) StockItemResponse {
	return StockItemResponse{
		ID:                item.ID,
		Kind:              item.Kind.String(),
		Code:              item.Code,
		Barcode:           item.Barcode,
		Name:              item.Name,
		Unit:              item.Unit,
		Price:             item.Price,
		TotalQuantity:     item.TotalQuantity,
		ReservedQuantity:  item.ReservedQuantity,
		AvailableQuantity: item.AvailableQuantity(),
		Anomaly:           item.HasAnomaly(),
		Version:           item.Version,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
	}
}

// CreatePackageRequest defines a bundle of an item
type CreatePackageRequest struct {
	ItemID     uuid.UUID       `json:"item_id" binding:"required"`
	Name       string          `json:"name" binding:"max=200"`
	BundleSize decimal.Decimal `json:"bundle_size"`
	Price      decimal.Decimal `json:"price"`
}

// PackageResponse represents a package with its derived bundle counts
type PackageResponse struct {
	ID               uuid.UUID       `json:"id"`
	ItemID           uuid.UUID       `json:"item_id"`
	Name             string          `json:"name"`
	BundleSize       decimal.Decimal `json:"bundle_size"`
	Price            decimal.Decimal `json:"price"`
	AvailableBundles decimal.Decimal `json:"available_bundles"`
	TotalBundles     decimal.Decimal `json:"total_bundles"`
}

// ToPackageResponse converts a package, deriving bundle counts from item
func ToPackageResponse(pkg *inventory.Package, item *inventory.StockItem) PackageResponse {
	return PackageResponse{
		ID:               pkg.ID,
		ItemID:           pkg.ItemID,
		Name:             pkg.Name,
		BundleSize:       pkg.BundleSize,
		Price:            pkg.Price,
		AvailableBundles: pkg.AvailableBundles(item),
		TotalBundles:     pkg.TotalBundles(item),
	}
}

// ItemRefResponse is the result of a catalog lookup
type ItemRefResponse struct {
	Kind string    `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

// ===================== Ledger =====================

// ApplyRequest posts one quantity change to the ledger
type ApplyRequest struct {
	ItemID         uuid.UUID       `json:"-"`
	Operation      string          `json:"operation" binding:"required,oneof=INCOMING OUTGOING ADJUSTMENT PRODUCTION RETURN"`
	Delta          decimal.Decimal `json:"delta"`
	ActorID        *uuid.UUID      `json:"-"`
	Reason         string          `json:"reason" binding:"max=255"`
	ShipmentItemID *uuid.UUID      `json:"shipment_item_id"`
}

// LedgerEntryResponse represents a ledger entry
type LedgerEntryResponse struct {
	ID             int64           `json:"id"`
	ItemID         uuid.UUID       `json:"item_id"`
	ItemKind       string          `json:"item_kind"`
	Operation      string          `json:"operation"`
	Delta          decimal.Decimal `json:"delta"`
	BalanceAfter   decimal.Decimal `json:"balance_after"`
	ActorID        *uuid.UUID      `json:"actor_id,omitempty"`
	Reason         string          `json:"reason"`
	ShipmentItemID *uuid.UUID      `json:"shipment_item_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToLedgerEntryResponse converts a ledger entry
func ToLedgerEntryResponse(e *inventory.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:             e.ID,
		ItemID:         e.ItemID,
		ItemKind:       e.ItemKind.String(),
		Operation:      e.Operation.String(),
		Delta:          e.Delta,
		BalanceAfter:   e.BalanceAfter,
		ActorID:        e.ActorID,
		Reason:         e.Reason,
		ShipmentItemID: e.ShipmentItemID,
		CreatedAt:      e.CreatedAt,
	}
}

// ===================== Shipments =====================

// CreateShipmentRequest opens a pending shipment
type CreateShipmentRequest struct {
	Sender      string    `json:"sender" binding:"max=200"`
	Destination string    `json:"destination" binding:"required,max=500"`
	Recipient   string    `json:"recipient" binding:"max=200"`
	CreatedBy   uuid.UUID `json:"-"`
}

// ReserveLineRequest adds a line to a shipment
type ReserveLineRequest struct {
	Item     ItemRefRequest  `json:"item" binding:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// UpdateLineRequest changes a line's quantity
type UpdateLineRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// ReturnShipmentRequest books a shipped shipment back into stock
type ReturnShipmentRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}

// ShipmentItemResponse represents a shipment line
type ShipmentItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	ShipmentID   uuid.UUID       `json:"shipment_id"`
	StockItemID  *uuid.UUID      `json:"stock_item_id,omitempty"`
	PackageID    *uuid.UUID      `json:"package_id,omitempty"`
	BaseItemID   uuid.UUID       `json:"base_item_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	BundleSize   decimal.Decimal `json:"bundle_size"`
	BaseUnits    decimal.Decimal `json:"base_units"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToShipmentItemResponse converts a shipment line
func ToShipmentItemResponse(line *fulfillment.ShipmentItem) ShipmentItemResponse {
	return ShipmentItemResponse{
		ID:           line.ID,
		ShipmentID:   line.ShipmentID,
		StockItemID:  line.StockItemID,
		PackageID:    line.PackageID,
		BaseItemID:   line.BaseItemID,
		Quantity:     line.Quantity,
		Price:        line.Price,
		BundleSize:   line.BundleSize,
		BaseUnits:    line.BaseUnits(),
		TotalPrice:   line.TotalPrice(),
		PricePerUnit: line.PricePerUnit(),
		CreatedAt:    line.CreatedAt,
	}
}

// ShipmentResponse represents a shipment with its lines
type ShipmentResponse struct {
	ID          uuid.UUID              `json:"id"`
	Sender      string                 `json:"sender"`
	Destination string                 `json:"destination"`
	Recipient   string                 `json:"recipient"`
	Status      string                 `json:"status"`
	CreatedBy   uuid.UUID              `json:"created_by"`
	ProcessedBy *uuid.UUID             `json:"processed_by,omitempty"`
	ShippedAt   *time.Time             `json:"shipped_at,omitempty"`
	ReturnedAt  *time.Time             `json:"returned_at,omitempty"`
	TotalPrice  decimal.Decimal        `json:"total_price"`
	Items       []ShipmentItemResponse `json:"items"`
	Version     int                    `json:"version"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// ToShipmentResponse converts a shipment
func ToShipmentResponse(s *fulfillment.Shipment) ShipmentResponse {
	items := make([]ShipmentItemResponse, len(s.Items))
	for i := range s.Items {
		items[i] = ToShipmentItemResponse(&s.Items[i])
	}
	return ShipmentResponse{
		ID:          s.ID,
		Sender:      s.Sender,
		Destination: s.Destination,
		Recipient:   s.Recipient,
		Status:      s.Status.String(),
		CreatedBy:   s.CreatedBy,
		ProcessedBy: s.ProcessedBy,
		ShippedAt:   s.ShippedAt,
		ReturnedAt:  s.ReturnedAt,
		TotalPrice:  s.TotalPrice(),
		Items:       items,
		Version:     s.Version,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ===================== Inventory counts =====================

// StartCountRequest opens a count
type StartCountRequest struct {
	Note   string    `json:"note" binding:"max=500"`
	UserID uuid.UUID `json:"-"`
}

// AddCountLineRequest records a counted quantity
type AddCountLineRequest struct {
	Item   ItemRefRequest  `json:"item" binding:"required"`
	Actual decimal.Decimal `json:"actual_quantity"`
}

// InventoryCountItemResponse represents a count line
type InventoryCountItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	ItemID         uuid.UUID       `json:"item_id"`
	ItemKind       string          `json:"item_kind"`
	SystemQuantity decimal.Decimal `json:"system_quantity"`
	ActualQuantity decimal.Decimal `json:"actual_quantity"`
	Variance       decimal.Decimal `json:"variance"`
}

// InventoryCountResponse represents a count with its lines
type InventoryCountResponse struct {
	ID           uuid.UUID                    `json:"id"`
	UserID       uuid.UUID                    `json:"user_id"`
	Note         string                       `json:"note"`
	Status       string                       `json:"status"`
	CompletedAt  *time.Time                   `json:"completed_at,omitempty"`
	ReconciledAt *time.Time                   `json:"reconciled_at,omitempty"`
	Items        []InventoryCountItemResponse `json:"items"`
	CreatedAt    time.Time                    `json:"created_at"`
	UpdatedAt    time.Time                    `json:"updated_at"`
}

// ToInventoryCountResponse converts a count
func ToInventoryCountResponse(c *inventory.InventoryCount) InventoryCountResponse {
	items := make([]InventoryCountItemResponse, len(c.Items))
	for i := range c.Items {
		line := &c.Items[i]
		items[i] = InventoryCountItemResponse{
			ID:             line.ID,
			ItemID:         line.ItemID,
			ItemKind:       line.ItemKind.String(),
			SystemQuantity: line.SystemQuantity,
			ActualQuantity: line.ActualQuantity,
			Variance:       line.Variance(),
		}
	}
	return InventoryCountResponse{
		ID:           c.ID,
		UserID:       c.UserID,
		Note:         c.Note,
		Status:       c.Status.String(),
		CompletedAt:  c.CompletedAt,
		ReconciledAt: c.ReconciledAt,
		Items:        items,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// ===================== Production =====================

// CreateOrderRequest opens a production order
type CreateOrderRequest struct {
	Note      string     `json:"note" binding:"max=500"`
	DueDate   *time.Time `json:"due_date"`
	CreatedBy uuid.UUID  `json:"-"`
}

// AddOrderItemRequest requests production of a stock item
type AddOrderItemRequest struct {
	StockItemID uuid.UUID       `json:"stock_item_id" binding:"required"`
	Requested   decimal.Decimal `json:"quantity_requested"`
}

// PlanWorkOrderRequest schedules a shift target
type PlanWorkOrderRequest struct {
	OrderItemID uuid.UUID       `json:"order_item_id" binding:"required"`
	Target      decimal.Decimal `json:"target"`
	ShiftDate   time.Time       `json:"shift_date" binding:"required"`
}

// CompleteWorkOrderRequest reports a shift's output
type CompleteWorkOrderRequest struct {
	Produced decimal.Decimal `json:"produced"`
}

// ProductionOrderItemResponse represents an order item with its derived status
type ProductionOrderItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	StockItemID       uuid.UUID       `json:"stock_item_id"`
	QuantityRequested decimal.Decimal `json:"quantity_requested"`
	QuantityPlanned   decimal.Decimal `json:"quantity_planned"`
	QuantityProduced  decimal.Decimal `json:"quantity_produced"`
	Status            string          `json:"status"`
}

// ProductionOrderResponse represents an order with its derived status
type ProductionOrderResponse struct {
	ID        uuid.UUID                     `json:"id"`
	Note      string                        `json:"note"`
	CreatedBy uuid.UUID                     `json:"created_by"`
	DueDate   *time.Time                    `json:"due_date,omitempty"`
	Status    string                        `json:"status"`
	Items     []ProductionOrderItemResponse `json:"items"`
	CreatedAt time.Time                     `json:"created_at"`
	UpdatedAt time.Time                     `json:"updated_at"`
}

// ToProductionOrderResponse converts an order
func ToProductionOrderResponse(o *production.ProductionOrder) ProductionOrderResponse {
	items := make([]ProductionOrderItemResponse, len(o.Items))
	for i := range o.Items {
		it := &o.Items[i]
		items[i] = ProductionOrderItemResponse{
			ID:                it.ID,
			StockItemID:       it.StockItemID,
			QuantityRequested: it.QuantityRequested,
			QuantityPlanned:   it.QuantityPlanned,
			QuantityProduced:  it.QuantityProduced,
			Status:            it.Status().String(),
		}
	}
	return ProductionOrderResponse{
		ID:        o.ID,
		Note:      o.Note,
		CreatedBy: o.CreatedBy,
		DueDate:   o.DueDate,
		Status:    o.Status().String(),
		Items:     items,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// WorkOrderResponse represents a work order
type WorkOrderResponse struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"order_id"`
	OrderItemID uuid.UUID       `json:"order_item_id"`
	StockItemID uuid.UUID       `json:"stock_item_id"`
	Target      decimal.Decimal `json:"target"`
	Produced    decimal.Decimal `json:"produced"`
	ShiftDate   time.Time       `json:"shift_date"`
	Status      string          `json:"status"`
	CompletedBy *uuid.UUID      `json:"completed_by,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// ToWorkOrderResponse converts a work order
func ToWorkOrderResponse(wo *production.WorkOrder) WorkOrderResponse {
	return WorkOrderResponse{
		ID:          wo.ID,
		OrderID:     wo.OrderID,
		OrderItemID: wo.OrderItemID,
		StockItemID: wo.StockItemID,
		Target:      wo.Target,
		Produced:    wo.Produced,
		ShiftDate:   wo.ShiftDate,
		Status:      string(wo.Status),
		CompletedBy: wo.CompletedBy,
		CompletedAt: wo.CompletedAt,
	}
}
