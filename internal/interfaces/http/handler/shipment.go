package handler

import (
	inventoryapp "github.com/erp/stockcore/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// ShipmentHandler drives shipments through reservation, packaging, shipping
// and return
type ShipmentHandler struct {
	BaseHandler
	fulfillment *inventoryapp.FulfillmentService
}

// NewShipmentHandler creates a ShipmentHandler
func NewShipmentHandler(fulfillment *inventoryapp.FulfillmentService) *ShipmentHandler {
	return &ShipmentHandler{fulfillment: fulfillment}
}

// CreateShipment godoc
// @Summary  Open a pending shipment
// @Tags     shipments
// @Router   /shipments [post]
func (h *ShipmentHandler) CreateShipment(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	var req inventoryapp.CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.CreatedBy = actor

	shipment, err := h.fulfillment.CreateShipment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, shipment)
}

// GetShipment godoc
// @Summary  Get a shipment with its lines
// @Tags     shipments
// @Router   /shipments/{id} [get]
func (h *ShipmentHandler) GetShipment(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	shipment, err := h.fulfillment.GetShipment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// ListShipments godoc
// @Summary  List shipments, optionally by status
// @Tags     shipments
// @Router   /shipments [get]
func (h *ShipmentHandler) ListShipments(c *gin.Context) {
	var filter inventoryapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	shipments, total, err := h.fulfillment.ListShipments(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, shipments, total, filter.Page, filter.PageSize)
}

// DeleteShipment godoc
// @Summary  Delete an unshipped shipment and release its reservations
// @Tags     shipments
// @Router   /shipments/{id} [delete]
func (h *ShipmentHandler) DeleteShipment(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.fulfillment.DeleteShipment(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ReserveLine godoc
// @Summary  Add a stock item or package line and reserve its units
// @Tags     shipments
// @Router   /shipments/{id}/items [post]
func (h *ShipmentHandler) ReserveLine(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.ReserveLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	ref, err := req.Item.ToItemRef()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	line, err := h.fulfillment.ReserveLine(c.Request.Context(), id, ref, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, line)
}

// UpdateLine godoc
// @Summary  Change a line's quantity and move its reservation
// @Tags     shipments
// @Router   /shipment-items/{id} [put]
func (h *ShipmentHandler) UpdateLine(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	line, err := h.fulfillment.UpdateLineQuantity(c.Request.Context(), id, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, line)
}

// DeleteLine godoc
// @Summary  Remove a line and release its reservation
// @Tags     shipments
// @Router   /shipment-items/{id} [delete]
func (h *ShipmentHandler) DeleteLine(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.fulfillment.DeleteLine(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// PackageShipment godoc
// @Summary  Mark a pending shipment as packaged
// @Tags     shipments
// @Router   /shipments/{id}/package [post]
func (h *ShipmentHandler) PackageShipment(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	shipment, err := h.fulfillment.PackageShipment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// ShipShipment godoc
// @Summary  Ship: consume reservations and post OUTGOING entries
// @Tags     shipments
// @Router   /shipments/{id}/ship [post]
func (h *ShipmentHandler) ShipShipment(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	shipment, err := h.fulfillment.ShipShipment(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// ReturnShipment godoc
// @Summary  Book a shipped shipment back into stock
// @Tags     shipments
// @Router   /shipments/{id}/return [post]
func (h *ShipmentHandler) ReturnShipment(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.ReturnShipmentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}
	shipment, err := h.fulfillment.ReturnShipment(c.Request.Context(), id, actor, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}
