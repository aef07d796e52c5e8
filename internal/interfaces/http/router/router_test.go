package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/stockcore/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("stock-items", "/stock-items").
		GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	NewRouter(engine).Register(g).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/stock-items/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup_Methods(t *testing.T) {
	status := func(code int) gin.HandlerFunc {
		return func(c *gin.Context) { c.Status(code) }
	}
	engine := gin.New()
	g := NewDomainGroup("shipments", "/shipments").
		GET("", status(http.StatusOK)).
		POST("", status(http.StatusCreated)).
		PUT("/:id", status(http.StatusAccepted)).
		DELETE("/:id", status(http.StatusNoContent))
	g.RegisterRoutes(engine.Group("/api/v1"))

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/shipments", http.StatusOK},
		{http.MethodPost, "/api/v1/shipments", http.StatusCreated},
		{http.MethodPut, "/api/v1/shipments/42", http.StatusAccepted},
		{http.MethodDelete, "/api/v1/shipments/42", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			assert.Equal(t, tt.want, serve(engine, tt.method, tt.path).Code)
		})
	}
}

func TestDomainGroup_Middleware(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("test", "/test").
		Use(func(c *gin.Context) {
			c.Header("X-Test-Middleware", "applied")
			c.Next()
		}).
		GET("/items", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	g.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodGet, "/api/v1/test/items")
	assert.Equal(t, "applied", w.Header().Get("X-Test-Middleware"))
}

func TestDomainGroup_Subgroups(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("production", "/production")
	g.Group("orders", "/orders").GET("", func(c *gin.Context) { c.String(http.StatusOK, "orders") })
	g.Group("work-orders", "/work-orders").POST("/:id/cancel", func(c *gin.Context) { c.String(http.StatusOK, "cancelled") })
	g.RegisterRoutes(engine.Group("/api/v1"))

	assert.Equal(t, "orders", serve(engine, http.MethodGet, "/api/v1/production/orders").Body.String())
	assert.Equal(t, "cancelled", serve(engine, http.MethodPost, "/api/v1/production/work-orders/7/cancel").Body.String())

	assert.Equal(t, []RouteInfo{
		{Method: http.MethodGet, Path: "/production/orders"},
		{Method: http.MethodPost, Path: "/production/work-orders/:id/cancel"},
	}, g.Routes())
}

func TestRegisterStockRoutes(t *testing.T) {
	engine := gin.New()
	h := Handlers{
		System:      handler.NewSystemHandler("stockcore", "test"),
		Catalog:     handler.NewCatalogHandler(nil),
		Ledger:      handler.NewLedgerHandler(nil),
		Shipments:   handler.NewShipmentHandler(nil),
		Stocktaking: handler.NewStocktakingHandler(nil),
		Production:  handler.NewProductionHandler(nil),
	}
	RegisterProbes(engine, h.System)
	require.NotPanics(t, func() {
		RegisterStockRoutes(NewRouter(engine), h).Setup()
	})

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"GET /health",
		"GET /health/ready",
		"GET /api/v1/system/ping",
		"POST /api/v1/stock-items",
		"GET /api/v1/stock-items/lookup",
		"PUT /api/v1/stock-items/:id/price",
		"POST /api/v1/stock-items/:id/ledger",
		"GET /api/v1/stock-items/:id/ledger",
		"GET /api/v1/packages/:id",
		"POST /api/v1/shipments/:id/items",
		"PUT /api/v1/shipment-items/:id",
		"DELETE /api/v1/shipment-items/:id",
		"POST /api/v1/shipments/:id/ship",
		"POST /api/v1/shipments/:id/return",
		"POST /api/v1/inventory-counts/:id/finalize",
		"POST /api/v1/production-orders/:id/work-orders",
		"POST /api/v1/work-orders/:id/complete",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
}
