package handler

import (
	inventoryapp "github.com/erp/stockcore/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves stock items, packages and code lookup
type CatalogHandler struct {
	BaseHandler
	catalog *inventoryapp.CatalogService
}

// NewCatalogHandler creates a CatalogHandler
func NewCatalogHandler(catalog *inventoryapp.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// CreateStockItem godoc
// @Summary  Create a material or product
// @Tags     stock-items
// @Router   /stock-items [post]
func (h *CatalogHandler) CreateStockItem(c *gin.Context) {
	var req inventoryapp.CreateStockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	item, err := h.catalog.CreateStockItem(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// GetStockItem godoc
// @Summary  Get a stock item with its quantities
// @Tags     stock-items
// @Router   /stock-items/{id} [get]
func (h *CatalogHandler) GetStockItem(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	item, err := h.catalog.GetStockItem(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// ListStockItems godoc
// @Summary  List stock items, optionally of one kind
// @Tags     stock-items
// @Router   /stock-items [get]
func (h *CatalogHandler) ListStockItems(c *gin.Context) {
	var filter inventoryapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	items, total, err := h.catalog.ListStockItems(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// UpdatePrice godoc
// @Summary  Change the catalog price of a stock item
// @Tags     stock-items
// @Router   /stock-items/{id}/price [put]
func (h *CatalogHandler) UpdatePrice(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	item, err := h.catalog.UpdatePrice(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// DeleteStockItem godoc
// @Summary  Delete a stock item without history or reservations
// @Tags     stock-items
// @Router   /stock-items/{id} [delete]
func (h *CatalogHandler) DeleteStockItem(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteStockItem(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Lookup godoc
// @Summary  Resolve an item code or barcode
// @Tags     stock-items
// @Param    code query string true "Item code or barcode"
// @Router   /stock-items/lookup [get]
func (h *CatalogHandler) Lookup(c *gin.Context) {
	ref, err := h.catalog.Lookup(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ref)
}

// CreatePackage godoc
// @Summary  Define a bundle of a stock item
// @Tags     packages
// @Router   /packages [post]
func (h *CatalogHandler) CreatePackage(c *gin.Context) {
	var req inventoryapp.CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	pkg, err := h.catalog.CreatePackage(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, pkg)
}

// ListPackages godoc
// @Summary  List the bundles of a stock item
// @Tags     packages
// @Router   /stock-items/{id}/packages [get]
func (h *CatalogHandler) ListPackages(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	pkgs, err := h.catalog.ListPackages(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pkgs)
}

// GetPackage godoc
// @Summary  Get a package with its current bundle availability
// @Tags     packages
// @Router   /packages/{id} [get]
func (h *CatalogHandler) GetPackage(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	pkg, err := h.catalog.GetPackageAvailability(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pkg)
}
