package portalserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	ordermapper "github.com/craftsite/fulfillment-api/internal/domains/orders/adapters/http/mapper"
	ordersapp "github.com/craftsite/fulfillment-api/internal/domains/orders/application"
	ordertypes "github.com/craftsite/fulfillment-api/internal/domains/orders/application/types"
	ordersports "github.com/craftsite/fulfillment-api/internal/domains/orders/ports"
	apierrors "github.com/craftsite/fulfillment-api/internal/shared/errors"
)

const (
	headerActorID       = "X-Actor-Id"
	headerInternalActor = "X-Internal-Actor"
)

// actorFrom resolves the caller identity from headers set by the auth proxy.
func actorFrom(c *gin.Context) ordertypes.Actor {
	internal := strings.TrimSpace(strings.ToLower(c.GetHeader(headerInternalActor)))
	return ordertypes.Actor{
		ID:       strings.TrimSpace(c.GetHeader(headerActorID)),
		Internal: internal == "1" || internal == "true",
	}
}

// requireInternal rejects callers outside the fulfillment pipeline.
func requireInternal(c *gin.Context) (ordertypes.Actor, bool) {
	actor := actorFrom(c)
	if !actor.Internal {
		apierrors.Respond(c, apierrors.ErrActionNotAllowed.WithDetail("internal endpoint"))
		return actor, false
	}
	return actor, true
}

func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		return
	}
	var problem apierrors.ProblemDetail
	switch status {
	case http.StatusBadRequest:
		problem = apierrors.ErrBadRequest.WithDetail(err.Error())
	case http.StatusNotFound:
		problem = apierrors.ErrNotFound.WithDetail(err.Error())
	case http.StatusForbidden:
		problem = apierrors.ErrActionNotAllowed.WithDetail(err.Error())
	default:
		problem = apierrors.ErrInternal.WithDetail(err.Error())
	}
	apierrors.Respond(c, problem)
}

// respondServiceError maps use-case errors to RFC 7807 responses.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, ordersports.ErrNotFound):
		apierrors.Respond(c, apierrors.ErrNotFound.WithDetail("order not found"))
	case errors.Is(err, ordersapp.ErrActionNotAllowed):
		apierrors.Respond(c, apierrors.ErrActionNotAllowed.WithDetail(err.Error()))
	case errors.Is(err, ordersapp.ErrInvalidTransition):
		apierrors.Respond(c, apierrors.ErrInvalidTransition.WithDetail(err.Error()))
	case errors.Is(err, ordersapp.ErrValidationFailed):
		problem := apierrors.ErrValidation.WithDetail(err.Error())
		if fields := ordersapp.FieldErrors(err); len(fields) > 0 {
			problem = problem.WithExtension("fields", fields)
		}
		apierrors.Respond(c, problem)
	case errors.Is(err, ordersapp.ErrInvalidInput):
		apierrors.Respond(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
	default:
		apierrors.Respond(c, apierrors.ErrInternal.WithDetail(err.Error()))
	}
}

func actionsResponse(orderID string, actions []string) ordermapper.ActionsResponse {
	if actions == nil {
		actions = []string{}
	}
	return ordermapper.ActionsResponse{OrderID: orderID, Actions: actions}
}
