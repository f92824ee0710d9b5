package portalserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route binds an HTTP method and pattern to a handler.
type Route struct {
	Method      string
	Pattern     string
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the transport surfaces of the API.
type ApiHandleFunctions struct {
	OrdersAPI   OrdersAPI
	PipelineAPI PipelineAPI
	WebhooksAPI WebhooksAPI
}

// NewRouter returns a gin engine with all application routes registered.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine registers all application routes on an existing engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = defaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodPatch:
			router.PATCH(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

func defaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{http.MethodPost, "/v1/orders", handleFunctions.OrdersAPI.CreateOrder},
		{http.MethodGet, "/v1/orders/:orderId", handleFunctions.OrdersAPI.GetOrder},
		{http.MethodGet, "/v1/orders/:orderId/actions", handleFunctions.OrdersAPI.GetOrderActions},
		{http.MethodGet, "/v1/customers/:customerId/orders", handleFunctions.OrdersAPI.ListCustomerOrders},
		{http.MethodPost, "/v1/orders/:orderId/onboarding", handleFunctions.OrdersAPI.SubmitOnboarding},
		{http.MethodPost, "/v1/orders/:orderId/approve", handleFunctions.OrdersAPI.ApproveOrder},
		{http.MethodPost, "/v1/orders/:orderId/revisions", handleFunctions.OrdersAPI.RequestRevision},
		{http.MethodPost, "/v1/orders/:orderId/cancel", handleFunctions.OrdersAPI.CancelOrder},
		{http.MethodGet, "/v1/orders/:orderId/deliverables", handleFunctions.OrdersAPI.ListDeliverables},

		{http.MethodPost, "/internal/v1/orders/:orderId/build/start", handleFunctions.PipelineAPI.StartBuild},
		{http.MethodPost, "/internal/v1/orders/:orderId/build/ready", handleFunctions.PipelineAPI.ReadyForReview},
		{http.MethodPost, "/internal/v1/orders/:orderId/deliverables", handleFunctions.PipelineAPI.AddDeliverable},

		{http.MethodPost, "/webhooks/payment", handleFunctions.WebhooksAPI.PaymentCaptured},
	}
}
