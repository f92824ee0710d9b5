package orders

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	ordertypes "github.com/craftsite/fulfillment-api/internal/domains/orders/application/types"
	orderactivities "github.com/craftsite/fulfillment-api/internal/platform/temporal/activities/orders"
)

const (
	// DeliveryNotificationWorkflowName is the public identifier for registering the workflow.
	DeliveryNotificationWorkflowName = "orders.workflows.DeliveryNotification"
	// DeliveryNotificationTaskQueue is the queue consumed by the worker processing delivery fan-out.
	DeliveryNotificationTaskQueue = "ORDER_DELIVERY"
)

// DeliveryNotificationInput carries the committed order view to notify about.
type DeliveryNotificationInput struct {
	View    ordertypes.OrderView
	TraceID string
}

// DeliveryNotificationWorkflow fans out the post-delivery collaborator calls.
// It runs strictly after the delivered transition commits; its failures are
// retried here and never reach the transition engine.
func DeliveryNotificationWorkflow(ctx workflow.Context, input DeliveryNotificationInput) error {
	logger := workflow.GetLogger(ctx)
	orderID := input.View.ID
	logger.Info("DeliveryNotificationWorkflow started", withTraceID(input.TraceID, "orderId", orderID)...)

	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	if err := workflow.ExecuteActivity(ctx, orderactivities.SendDeliveryEmailActivityName, input.View).Get(ctx, nil); err != nil {
		logger.Error("delivery email failed", withTraceID(input.TraceID, "orderId", orderID, "error", err)...)
		// CRM sync still runs; a dead mail collaborator should not hide the delivery from sales.
	}
	if err := workflow.ExecuteActivity(ctx, orderactivities.SyncCRMActivityName, input.View).Get(ctx, nil); err != nil {
		logger.Error("CRM sync failed", withTraceID(input.TraceID, "orderId", orderID, "error", err)...)
		return err
	}

	logger.Info("DeliveryNotificationWorkflow completed", withTraceID(input.TraceID, "orderId", orderID)...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
