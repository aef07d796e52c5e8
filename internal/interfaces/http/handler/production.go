package handler

import (
	inventoryapp "github.com/erp/stockcore/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// ProductionHandler serves production orders and their work orders
type ProductionHandler struct {
	BaseHandler
	production *inventoryapp.ProductionService
}

// NewProductionHandler creates a ProductionHandler
func NewProductionHandler(production *inventoryapp.ProductionService) *ProductionHandler {
	return &ProductionHandler{production: production}
}

// CreateOrder godoc
// @Summary  Open a production order
// @Tags     production
// @Router   /production-orders [post]
func (h *ProductionHandler) CreateOrder(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	var req inventoryapp.CreateOrderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}
	req.CreatedBy = actor

	order, err := h.production.CreateOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// GetOrder godoc
// @Summary  Get an order with its derived status
// @Tags     production
// @Router   /production-orders/{id} [get]
func (h *ProductionHandler) GetOrder(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	order, err := h.production.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ListOrders godoc
// @Summary  List production orders
// @Tags     production
// @Router   /production-orders [get]
func (h *ProductionHandler) ListOrders(c *gin.Context) {
	var filter inventoryapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	orders, total, err := h.production.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// AddOrderItem godoc
// @Summary  Request production of a stock item
// @Tags     production
// @Router   /production-orders/{id}/items [post]
func (h *ProductionHandler) AddOrderItem(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.AddOrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	order, err := h.production.AddOrderItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// PlanWorkOrder godoc
// @Summary  Schedule a shift target against an order item
// @Tags     production
// @Router   /production-orders/{id}/work-orders [post]
func (h *ProductionHandler) PlanWorkOrder(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.PlanWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	wo, err := h.production.PlanWorkOrder(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, wo)
}

// ListWorkOrders godoc
// @Summary  List the work orders of an order
// @Tags     production
// @Router   /production-orders/{id}/work-orders [get]
func (h *ProductionHandler) ListWorkOrders(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	wos, err := h.production.ListWorkOrders(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, wos)
}

// CompleteWorkOrder godoc
// @Summary  Book a shift's output into stock
// @Tags     production
// @Router   /work-orders/{id}/complete [post]
func (h *ProductionHandler) CompleteWorkOrder(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.CompleteWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	order, err := h.production.CompleteWorkOrder(c.Request.Context(), id, req.Produced, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// CancelWorkOrder godoc
// @Summary  Withdraw a planned work order
// @Tags     production
// @Router   /work-orders/{id}/cancel [post]
func (h *ProductionHandler) CancelWorkOrder(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	order, err := h.production.CancelWorkOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
