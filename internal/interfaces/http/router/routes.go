package router

import (
	"github.com/erp/stockcore/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers of the stock API
type Handlers struct {
	System      *handler.SystemHandler
	Catalog     *handler.CatalogHandler
	Ledger      *handler.LedgerHandler
	Shipments   *handler.ShipmentHandler
	Stocktaking *handler.StocktakingHandler
	Production  *handler.ProductionHandler
}

// RegisterProbes mounts the liveness and readiness probes outside the
// versioned API
func RegisterProbes(engine *gin.Engine, system *handler.SystemHandler) {
	engine.GET("/health", system.Health)
	engine.GET("/health/ready", system.Ready)
}

// RegisterStockRoutes adds every domain group of the stock API to r
func RegisterStockRoutes(r *Router, h Handlers) *Router {
	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping)

	items := NewDomainGroup("stock-items", "/stock-items").
		POST("", h.Catalog.CreateStockItem).
		GET("", h.Catalog.ListStockItems).
		GET("/lookup", h.Catalog.Lookup).
		GET("/:id", h.Catalog.GetStockItem).
		DELETE("/:id", h.Catalog.DeleteStockItem).
		PUT("/:id/price", h.Catalog.UpdatePrice).
		GET("/:id/packages", h.Catalog.ListPackages).
		POST("/:id/ledger", h.Ledger.Apply).
		GET("/:id/ledger", h.Ledger.History)

	packages := NewDomainGroup("packages", "/packages").
		POST("", h.Catalog.CreatePackage).
		GET("/:id", h.Catalog.GetPackage)

	shipments := NewDomainGroup("shipments", "/shipments").
		POST("", h.Shipments.CreateShipment).
		GET("", h.Shipments.ListShipments).
		GET("/:id", h.Shipments.GetShipment).
		DELETE("/:id", h.Shipments.DeleteShipment).
		POST("/:id/items", h.Shipments.ReserveLine).
		POST("/:id/package", h.Shipments.PackageShipment).
		POST("/:id/ship", h.Shipments.ShipShipment).
		POST("/:id/return", h.Shipments.ReturnShipment)

	lines := NewDomainGroup("shipment-items", "/shipment-items").
		PUT("/:id", h.Shipments.UpdateLine).
		DELETE("/:id", h.Shipments.DeleteLine)

	counts := NewDomainGroup("inventory-counts", "/inventory-counts").
		POST("", h.Stocktaking.StartCount).
		GET("", h.Stocktaking.ListCounts).
		GET("/:id", h.Stocktaking.GetCount).
		POST("/:id/items", h.Stocktaking.AddCountLine).
		POST("/:id/complete", h.Stocktaking.CompleteCount).
		POST("/:id/finalize", h.Stocktaking.FinalizeCount)

	orders := NewDomainGroup("production-orders", "/production-orders").
		POST("", h.Production.CreateOrder).
		GET("", h.Production.ListOrders).
		GET("/:id", h.Production.GetOrder).
		POST("/:id/items", h.Production.AddOrderItem).
		POST("/:id/work-orders", h.Production.PlanWorkOrder).
		GET("/:id/work-orders", h.Production.ListWorkOrders)

	workOrders := NewDomainGroup("work-orders", "/work-orders").
		POST("/:id/complete", h.Production.CompleteWorkOrder).
		POST("/:id/cancel", h.Production.CancelWorkOrder)

	return r.Register(system).
		Register(items).
		Register(packages).
		Register(shipments).
		Register(lines).
		Register(counts).
		Register(orders).
		Register(workOrders)
}
