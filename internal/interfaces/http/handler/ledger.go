package handler

import (
	inventoryapp "github.com/erp/stockcore/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// LedgerHandler posts quantity changes and pages through item history
type LedgerHandler struct {
	BaseHandler
	ledger *inventoryapp.LedgerService
}

// NewLedgerHandler creates a LedgerHandler
func NewLedgerHandler(ledger *inventoryapp.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// HistoryQuery selects one page of ledger history
type HistoryQuery struct {
	BeforeID int64 `form:"before_id" binding:"omitempty,min=0"`
	Limit    int   `form:"limit" binding:"omitempty,min=1"`
}

// HistoryPage is one page of ledger entries, newest first. NextBeforeID is
// set when the page is full, so older entries may exist.
type HistoryPage struct {
	Entries      []inventoryapp.LedgerEntryResponse `json:"entries"`
	NextBeforeID *int64                             `json:"next_before_id,omitempty"`
}

// Apply godoc
// @Summary  Post a quantity change to an item's ledger
// @Tags     ledger
// @Router   /stock-items/{id}/ledger [post]
func (h *LedgerHandler) Apply(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.ItemID = id
	req.ActorID = optionalActor(c)

	entry, err := h.ledger.Apply(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// History godoc
// @Summary  Page through an item's ledger, newest first
// @Tags     ledger
// @Param    before_id query int false "Return entries older than this ID"
// @Param    limit     query int false "Page size"
// @Router   /stock-items/{id}/ledger [get]
func (h *LedgerHandler) History(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var q HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	entries, err := h.ledger.ListHistory(c.Request.Context(), id, q.BeforeID, q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	limit := q.Limit
	if limit <= 0 || limit > h.ledger.PageSize() {
		limit = h.ledger.PageSize()
	}
	page := HistoryPage{Entries: entries}
	if n := len(entries); n > 0 && n == limit {
		next := entries[n-1].ID
		page.NextBeforeID = &next
	}
	h.Success(c, page)
}
