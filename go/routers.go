package posserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions bundles the handlers of every API section.
type ApiHandleFunctions struct {
	MenuAPI    MenuAPI
	OrderAPI   OrderAPI
	SessionAPI SessionAPI
	// Gatherer backs GET /metrics; nil uses the default Prometheus registry.
	Gatherer prometheus.Gatherer
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions, middleware ...gin.HandlerFunc) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions, middleware...)
}

// NewRouterWithGinEngine adds the routes to an existing engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions, middleware ...gin.HandlerFunc) *gin.Engine {
	router.Use(middleware...)
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		router.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	return router
}

// DefaultHandleFunc is used for routes without a handler.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	gatherer := handleFunctions.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return []Route{
		{"Healthz", http.MethodGet, "/healthz", healthz},
		{"Metrics", http.MethodGet, "/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))},
		{"GetSession", http.MethodGet, "/v1/session", handleFunctions.SessionAPI.GetSession},
		{"GetNotice", http.MethodGet, "/v1/notice", handleFunctions.SessionAPI.GetNotice},
		{"DismissNotice", http.MethodDelete, "/v1/notice", handleFunctions.SessionAPI.DismissNotice},
		{"ListMenu", http.MethodGet, "/v1/menu", handleFunctions.MenuAPI.ListMenu},
		{"StreamMenu", http.MethodGet, "/v1/menu/stream", handleFunctions.MenuAPI.StreamMenu},
		{"AddMenuItem", http.MethodPost, "/v1/menu", handleFunctions.MenuAPI.AddMenuItem},
		{"DeleteMenuItem", http.MethodDelete, "/v1/menu/:itemId", handleFunctions.MenuAPI.DeleteMenuItem},
		{"GetOrder", http.MethodGet, "/v1/order", handleFunctions.OrderAPI.GetOrder},
		{"AddOrderLine", http.MethodPost, "/v1/order/lines", handleFunctions.OrderAPI.AddOrderLine},
		{"RemoveOrderLine", http.MethodDelete, "/v1/order/lines/:itemId", handleFunctions.OrderAPI.RemoveOrderLine},
		{"ClearOrder", http.MethodDelete, "/v1/order", handleFunctions.OrderAPI.ClearOrder},
		{"GetChange", http.MethodGet, "/v1/order/change", handleFunctions.OrderAPI.GetChange},
	}
}

func healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
