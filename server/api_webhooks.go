package portalserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ordermapper "github.com/craftsite/fulfillment-api/internal/domains/orders/adapters/http/mapper"
	ordersports "github.com/craftsite/fulfillment-api/internal/domains/orders/ports"
)

// WebhooksAPI receives payment provider callbacks.
type WebhooksAPI struct {
	service ordersports.Service
}

// NewWebhooksAPI creates a WebhooksAPI backed by the provided service.
func NewWebhooksAPI(service ordersports.Service) WebhooksAPI {
	return WebhooksAPI{service: service}
}

// Post /webhooks/payment
// Record a captured payment. Redeliveries of the same event id are
// acknowledged without re-applying the transition.
func (api *WebhooksAPI) PaymentCaptured(c *gin.Context) {
	var payload ordermapper.PaymentWebhookRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	view, err := api.service.CapturePayment(c.Request.Context(), ordermapper.ToPaymentCapturedInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
