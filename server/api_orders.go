package portalserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ordermapper "github.com/craftsite/fulfillment-api/internal/domains/orders/adapters/http/mapper"
	ordertypes "github.com/craftsite/fulfillment-api/internal/domains/orders/application/types"
	ordersports "github.com/craftsite/fulfillment-api/internal/domains/orders/ports"
)

// OrdersAPI wires the client portal transport with the orders bounded context.
type OrdersAPI struct {
	service ordersports.Service
}

// NewOrdersAPI creates an OrdersAPI backed by the provided service.
func NewOrdersAPI(service ordersports.Service) OrdersAPI {
	return OrdersAPI{service: service}
}

// Post /v1/orders
// Create an order from checkout data
func (api *OrdersAPI) CreateOrder(c *gin.Context) {
	var payload ordermapper.CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	view, err := api.service.CreateOrder(c.Request.Context(), ordermapper.ToCreateOrderInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Get /v1/orders/:orderId
// Fetch the authoritative order view
func (api *OrdersAPI) GetOrder(c *gin.Context) {
	view, err := api.service.GetOrderView(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Get /v1/orders/:orderId/actions
// List the actions the caller may take on the order
func (api *OrdersAPI) GetOrderActions(c *gin.Context) {
	orderID := c.Param("orderId")
	actions, err := api.service.GetPermittedActions(c.Request.Context(), orderID, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, actionsResponse(orderID, actions))
}

// Get /v1/customers/:customerId/orders
// List a customer's orders newest first
func (api *OrdersAPI) ListCustomerOrders(c *gin.Context) {
	views, err := api.service.ListCustomerOrders(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// Post /v1/orders/:orderId/onboarding
// Submit the onboarding brief
func (api *OrdersAPI) SubmitOnboarding(c *gin.Context) {
	var payload ordermapper.OnboardingRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	view, err := api.service.SubmitOnboarding(c.Request.Context(), ordermapper.ToOnboardingInput(c.Param("orderId"), payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Post /v1/orders/:orderId/approve
// Approve the previewed site and trigger delivery
func (api *OrdersAPI) ApproveOrder(c *gin.Context) {
	input := ordertypes.ApproveInput{OrderID: c.Param("orderId"), Actor: actorFrom(c)}
	view, err := api.service.ApproveOrder(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Post /v1/orders/:orderId/revisions
// Request changes to the previewed site
func (api *OrdersAPI) RequestRevision(c *gin.Context) {
	var payload ordermapper.RevisionRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	input := ordertypes.RevisionRequestInput{
		OrderID:        c.Param("orderId"),
		Actor:          actorFrom(c),
		Message:        payload.Message,
		AttachmentRefs: payload.AttachmentRefs,
	}
	outcome, err := api.service.RequestRevision(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// Post /v1/orders/:orderId/cancel
// Cancel the order
func (api *OrdersAPI) CancelOrder(c *gin.Context) {
	input := ordertypes.CancelInput{OrderID: c.Param("orderId"), Actor: actorFrom(c)}
	view, err := api.service.CancelOrder(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Get /v1/orders/:orderId/deliverables
// List the order's planning documents
func (api *OrdersAPI) ListDeliverables(c *gin.Context) {
	deliverables, err := api.service.ListDeliverables(c.Request.Context(), c.Param("orderId"), actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, deliverables)
}
