package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	ordertypes "github.com/craftsite/fulfillment-api/internal/domains/orders/application/types"
	"github.com/craftsite/fulfillment-api/internal/domains/orders/ports"
	orderworkflows "github.com/craftsite/fulfillment-api/internal/platform/temporal/workflows/orders"
)

var (
	_ ports.DeliveryNotifier = (*TemporalDeliveryNotifier)(nil)
	_ ports.DeliveryNotifier = (*InlineDeliveryNotifier)(nil)
)

// TemporalDeliveryNotifier starts the delivery fan-out workflow on a
// Temporal cluster. It is fire-and-forget: the workflow is started but never
// awaited, so a slow collaborator cannot delay the approve response.
type TemporalDeliveryNotifier struct {
	client    client.Client
	taskQueue string
}

// NewTemporalDeliveryNotifier wires a Temporal client into the notifier.
func NewTemporalDeliveryNotifier(c client.Client) *TemporalDeliveryNotifier {
	return &TemporalDeliveryNotifier{client: c, taskQueue: orderworkflows.DeliveryNotificationTaskQueue}
}

// NotifyDelivered starts the durable notification workflow. The workflow ID
// is derived from the order so a redelivered trigger dedupes on the cluster.
func (n *TemporalDeliveryNotifier) NotifyDelivered(ctx context.Context, view ordertypes.OrderView) error {
	if n == nil || n.client == nil {
		return errors.New("temporal delivery notifier not configured")
	}
	options := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("order-delivery-%s", view.ID),
		TaskQueue: n.taskQueue,
	}
	_, err := n.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.DeliveryNotificationWorkflow,
		orderworkflows.DeliveryNotificationInput{View: view, TraceID: traceIDFromContext(ctx)},
	)
	var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &alreadyStarted) {
		return nil
	}
	return err
}

// InlineDeliveryNotifier runs the collaborators directly without Temporal,
// useful for tests or dev fallbacks. Execution is detached from the caller
// so collaborator latency and failures stay out of the transition path.
type InlineDeliveryNotifier struct {
	mail    ports.MailSender
	crm     ports.CRMSync
	logger  *slog.Logger
	timeout time.Duration
}

// NewInlineDeliveryNotifier wraps the collaborators for direct execution.
func NewInlineDeliveryNotifier(mail ports.MailSender, crm ports.CRMSync, logger *slog.Logger) *InlineDeliveryNotifier {
	return &InlineDeliveryNotifier{mail: mail, crm: crm, logger: logger, timeout: 30 * time.Second}
}

// NotifyDelivered dispatches the collaborator calls in the background.
func (n *InlineDeliveryNotifier) NotifyDelivered(_ context.Context, view ordertypes.OrderView) error {
	if n == nil {
		return errors.New("inline delivery notifier not configured")
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if n.mail != nil {
			if err := n.mail.SendDeliveryEmail(ctx, view.CustomerEmail, view.SiteURL); err != nil {
				n.logWarn("delivery email failed", view.ID, err)
			}
		}
		if n.crm != nil {
			if err := n.crm.SyncDelivered(ctx, view.ID, view.CustomerEmail, view.SiteURL); err != nil {
				n.logWarn("CRM sync failed", view.ID, err)
			}
		}
	}()
	return nil
}

func (n *InlineDeliveryNotifier) logWarn(msg, orderID string, err error) {
	if n.logger == nil {
		return
	}
	n.logger.Warn(msg, slog.String("order.id", orderID), slog.String("error", err.Error()))
}

func traceIDFromContext(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() || !spanCtx.TraceID().IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
