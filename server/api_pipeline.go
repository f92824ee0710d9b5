package portalserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ordermapper "github.com/craftsite/fulfillment-api/internal/domains/orders/adapters/http/mapper"
	ordertypes "github.com/craftsite/fulfillment-api/internal/domains/orders/application/types"
	ordersports "github.com/craftsite/fulfillment-api/internal/domains/orders/ports"
)

// PipelineAPI exposes the internal fulfillment endpoints the build tooling
// calls. Every handler requires an internal actor.
type PipelineAPI struct {
	service ordersports.Service
}

// NewPipelineAPI creates a PipelineAPI backed by the provided service.
func NewPipelineAPI(service ordersports.Service) PipelineAPI {
	return PipelineAPI{service: service}
}

// Post /internal/v1/orders/:orderId/build/start
// Mark the build as started with a delivery estimate
func (api *PipelineAPI) StartBuild(c *gin.Context) {
	if _, ok := requireInternal(c); !ok {
		return
	}
	var payload ordermapper.BuildStartRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	input := ordertypes.BuildStartedInput{
		OrderID:              c.Param("orderId"),
		ExpectedDeliveryDate: payload.ExpectedDeliveryDate,
	}
	view, err := api.service.StartBuild(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Post /internal/v1/orders/:orderId/build/ready
// Hand the built site to the customer for review
func (api *PipelineAPI) ReadyForReview(c *gin.Context) {
	if _, ok := requireInternal(c); !ok {
		return
	}
	var payload ordermapper.BuildReadyRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	input := ordertypes.BuildReadyInput{
		OrderID:    c.Param("orderId"),
		PreviewURL: payload.PreviewURL,
	}
	view, err := api.service.ReadyForReview(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Post /internal/v1/orders/:orderId/deliverables
// Attach a planning document to the order
func (api *PipelineAPI) AddDeliverable(c *gin.Context) {
	if _, ok := requireInternal(c); !ok {
		return
	}
	var payload ordermapper.AddDeliverableRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	deliverable, err := api.service.AddDeliverable(c.Request.Context(), ordermapper.ToAddDeliverableInput(c.Param("orderId"), payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, deliverable)
}
