package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	ordertypes "github.com/craftsite/fulfillment-api/internal/domains/orders/application/types"
	orderports "github.com/craftsite/fulfillment-api/internal/domains/orders/ports"
)

const tracerName = "github.com/craftsite/fulfillment-api/internal/domains/orders/adapters/observability/service"

// Service decorates the orders service with tracing, logging, and metrics.
type Service struct {
	inner   orderports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core orders service.
func New(inner orderports.Service, opts ...Option) orderports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) CreateOrder(ctx context.Context, input ordertypes.CreateOrderInput) (*ordertypes.OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder",
		trace.WithAttributes(attribute.String("order.customer_id", input.CustomerID)))
	defer span.End()

	view, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.String("customer.id", input.CustomerID))
	}
	s.logInfo(ctx, "order created", slog.String("order.id", view.ID), slog.String("status", view.Status))
	return view, nil
}

func (s *Service) GetOrderView(ctx context.Context, orderID string) (*ordertypes.OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrderView",
		trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	view, err := s.inner.GetOrderView(ctx, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order view", slog.String("order.id", orderID))
	}
	span.SetAttributes(attribute.String("order.status", view.Status))
	return view, nil
}

func (s *Service) ListCustomerOrders(ctx context.Context, customerID string) ([]*ordertypes.OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListCustomerOrders",
		trace.WithAttributes(attribute.String("customer.id", customerID)))
	defer span.End()

	views, err := s.inner.ListCustomerOrders(ctx, customerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list customer orders", slog.String("customer.id", customerID))
	}
	span.SetAttributes(attribute.Int("order.count", len(views)))
	return views, nil
}

func (s *Service) GetPermittedActions(ctx context.Context, orderID string, actor ordertypes.Actor) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetPermittedActions",
		trace.WithAttributes(attribute.String("order.id", orderID), attribute.Bool("actor.internal", actor.Internal)))
	defer span.End()

	actions, err := s.inner.GetPermittedActions(ctx, orderID, actor)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to resolve permitted actions", slog.String("order.id", orderID))
	}
	return actions, nil
}

func (s *Service) CapturePayment(ctx context.Context, input ordertypes.PaymentCapturedInput) (*ordertypes.OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CapturePayment",
		trace.WithAttributes(attribute.String("order.id", input.OrderID), attribute.String("payment.event_id", input.EventID)))
	defer span.End()

	s.logInfo(ctx, "capturing payment", slog.String("order.id", input.OrderID), slog.String("event.id", input.EventID))
	view, err := s.inner.CapturePayment(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "payment_captured")
		return nil, s.handleError(ctx, span, err, "payment capture rejected", slog.String("order.id", input.OrderID))
	}
	s.metrics.recordApplied(ctx, "payment_captured", view.Status)
	s.logInfo(ctx, "payment captured", slog.String("order.id", view.ID), slog.String("status", view.Status))
	return view, nil
}

func (s *Service) SubmitOnboarding(ctx context.Context, input ordertypes.OnboardingInput) (*ordertypes.OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.SubmitOnboarding",
		trace.WithAttributes(attribute.String("order.id", input.OrderID)))
	defer span.End()

	view, err := s.inner.SubmitOnboarding(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "onboarding_submitted")
		return nil, s.handleError(ctx, span, err, "onboarding submission rejected", slog.String("order.id", input.OrderID))
	}
	s.metrics.recordApplied(ctx, "onboarding_submitted", view.Status)
	s.logInfo(ctx, "onboarding submitted", slog.String("order.id", view.ID), slog.String("status", view.Status))
	return view, nil
}

func (s *Service) StartBuild(ctx context.Context, input ordertypes.BuildStartedInput) (*ordertypes.OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.StartBuild",
		trace.WithAttributes(attribute.String("order.id", input.OrderID)))
	defer span.End()

	view, err := s.inner.StartBuild(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "build_started")
		return nil, s.handleError(ctx, span, err, "build start rejected", slog.String("order.id", input.OrderID))
	}
	s.metrics.recordApplied(ctx, "build_started", view.Status)
	s.logInfo(ctx, "build started", slog.String("order.id", view.ID))
	return view, nil
}

func (s *Service) ReadyForReview(ctx context.Context, input ordertypes.BuildReadyInput) (*ordertypes.OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ReadyForReview",
		trace.WithAttributes(attribute.String("order.id", input.OrderID)))
	defer span.End()

	view, err := s.inner.ReadyForReview(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "build_ready_for_review")
		return nil, s.handleError(ctx, span, err, "build ready rejected", slog.String("order.id", input.OrderID))
	}
	s.metrics.recordApplied(ctx, "build_ready_for_review", view.Status)
	s.logInfo(ctx, "build ready for review", slog.String("order.id", view.ID), slog.String("status", view.Status))
	return view, nil
}

func (s *Service) ApproveOrder(ctx context.Context, input ordertypes.ApproveInput) (*ordertypes.OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ApproveOrder",
		trace.WithAttributes(attribute.String("order.id", input.OrderID), attribute.String("actor.id", input.Actor.ID)))
	defer span.End()

	s.logInfo(ctx, "approving order", slog.String("order.id", input.OrderID), slog.String("actor.id", input.Actor.ID))
	view, err := s.inner.ApproveOrder(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "client_approves")
		return nil, s.handleError(ctx, span, err, "approval rejected", slog.String("order.id", input.OrderID))
	}
	s.metrics.recordApplied(ctx, "client_approves", view.Status)
	s.logInfo(ctx, "order delivered", slog.String("order.id", view.ID), slog.String("site.url", view.SiteURL))
	return view, nil
}

func (s *Service) RequestRevision(ctx context.Context, input ordertypes.RevisionRequestInput) (*ordertypes.RevisionOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.RequestRevision",
		trace.WithAttributes(attribute.String("order.id", input.OrderID), attribute.String("actor.id", input.Actor.ID)))
	defer span.End()

	outcome, err := s.inner.RequestRevision(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "client_requests_revision")
		return nil, s.handleError(ctx, span, err, "revision request rejected", slog.String("order.id", input.OrderID))
	}
	span.SetAttributes(attribute.String("revision.classification", outcome.Classification))
	s.metrics.recordApplied(ctx, "client_requests_revision", outcome.View.Status)
	s.metrics.recordRevision(ctx, outcome.Classification)
	s.logInfo(ctx, "revision requested",
		slog.String("order.id", outcome.View.ID),
		slog.String("classification", outcome.Classification),
		slog.Int("revisions.used", outcome.View.RevisionsUsed))
	return outcome, nil
}

func (s *Service) CancelOrder(ctx context.Context, input ordertypes.CancelInput) (*ordertypes.OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CancelOrder",
		trace.WithAttributes(attribute.String("order.id", input.OrderID)))
	defer span.End()

	view, err := s.inner.CancelOrder(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "cancel")
		return nil, s.handleError(ctx, span, err, "cancellation rejected", slog.String("order.id", input.OrderID))
	}
	s.metrics.recordApplied(ctx, "cancel", view.Status)
	s.logInfo(ctx, "order cancelled", slog.String("order.id", view.ID))
	return view, nil
}

func (s *Service) AddDeliverable(ctx context.Context, input ordertypes.AddDeliverableInput) (*ordertypes.DeliverableView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.AddDeliverable",
		trace.WithAttributes(attribute.String("order.id", input.OrderID), attribute.String("deliverable.type", input.Type)))
	defer span.End()

	view, err := s.inner.AddDeliverable(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add deliverable", slog.String("order.id", input.OrderID))
	}
	s.logInfo(ctx, "deliverable added", slog.String("order.id", view.OrderID), slog.String("deliverable.id", view.ID))
	return view, nil
}

func (s *Service) ListDeliverables(ctx context.Context, orderID string, actor ordertypes.Actor) ([]*ordertypes.DeliverableView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListDeliverables",
		trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	views, err := s.inner.ListDeliverables(ctx, orderID, actor)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list deliverables", slog.String("order.id", orderID))
	}
	span.SetAttributes(attribute.Int("deliverable.count", len(views)))
	return views, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	transitionsApplied  metric.Int64Counter
	transitionsRejected metric.Int64Counter
	revisionsClassified metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	applied, _ := m.Int64Counter("orders.service.transitions_applied",
		metric.WithDescription("Number of committed order transitions"))
	rejected, _ := m.Int64Counter("orders.service.transitions_rejected",
		metric.WithDescription("Number of rejected order transitions"))
	revisions, _ := m.Int64Counter("orders.service.revisions_classified",
		metric.WithDescription("Number of revision requests by billing classification"))
	return serviceMetrics{
		transitionsApplied:  applied,
		transitionsRejected: rejected,
		revisionsClassified: revisions,
	}
}

func (m serviceMetrics) recordApplied(ctx context.Context, event, status string) {
	if m.transitionsApplied != nil {
		m.transitionsApplied.Add(ctx, 1, metric.WithAttributes(
			attribute.String("order.event", event),
			attribute.String("order.status", status)))
	}
}

func (m serviceMetrics) recordRejected(ctx context.Context, event string) {
	if m.transitionsRejected != nil {
		m.transitionsRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("order.event", event)))
	}
}

func (m serviceMetrics) recordRevision(ctx context.Context, classification string) {
	if m.revisionsClassified != nil {
		m.revisionsClassified.Add(ctx, 1, metric.WithAttributes(attribute.String("revision.classification", classification)))
	}
}

var _ orderports.Service = (*Service)(nil)
