package handler

import (
	inventoryapp "github.com/erp/stockcore/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// StocktakingHandler serves inventory counts
type StocktakingHandler struct {
	BaseHandler
	counts *inventoryapp.StocktakingService
}

// NewStocktakingHandler creates a StocktakingHandler
func NewStocktakingHandler(counts *inventoryapp.StocktakingService) *StocktakingHandler {
	return &StocktakingHandler{counts: counts}
}

// StartCount godoc
// @Summary  Open an inventory count owned by the acting user
// @Tags     inventory-counts
// @Router   /inventory-counts [post]
func (h *StocktakingHandler) StartCount(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	var req inventoryapp.StartCountRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}
	req.UserID = actor

	count, err := h.counts.StartCount(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, count)
}

// GetCount godoc
// @Summary  Get a count with its lines and variances
// @Tags     inventory-counts
// @Router   /inventory-counts/{id} [get]
func (h *StocktakingHandler) GetCount(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	count, err := h.counts.GetCount(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, count)
}

// ListCounts godoc
// @Summary  List inventory counts
// @Tags     inventory-counts
// @Router   /inventory-counts [get]
func (h *StocktakingHandler) ListCounts(c *gin.Context) {
	var filter inventoryapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	counts, total, err := h.counts.ListCounts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, counts, total, filter.Page, filter.PageSize)
}

// AddCountLine godoc
// @Summary  Record the counted quantity of a stock item
// @Tags     inventory-counts
// @Router   /inventory-counts/{id}/items [post]
func (h *StocktakingHandler) AddCountLine(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.AddCountLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	ref, err := req.Item.ToItemRef()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	line, err := h.counts.AddCountLine(c.Request.Context(), id, ref, req.Actual)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, line)
}

// CompleteCount godoc
// @Summary  Close a count for edits
// @Tags     inventory-counts
// @Router   /inventory-counts/{id}/complete [post]
func (h *StocktakingHandler) CompleteCount(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	count, err := h.counts.CompleteCount(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, count)
}

// FinalizeCount godoc
// @Summary  Apply a completed count's variances as ADJUSTMENT entries
// @Tags     inventory-counts
// @Router   /inventory-counts/{id}/finalize [post]
func (h *StocktakingHandler) FinalizeCount(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	count, err := h.counts.FinalizeCount(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, count)
}
