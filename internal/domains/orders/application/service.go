package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	ordertypes "github.com/craftsite/fulfillment-api/internal/domains/orders/application/types"
	"github.com/craftsite/fulfillment-api/internal/domains/orders/domain"
	"github.com/craftsite/fulfillment-api/internal/domains/orders/ports"
	"github.com/craftsite/fulfillment-api/internal/shared/projection"
)

// DefaultPublishBaseURL hosts approved sites unless configured otherwise.
const DefaultPublishBaseURL = "https://sites.craftsite.app"

// Service is the transition engine for the orders bounded context. All
// status mutations flow through it: it normalizes the stored status, checks
// the action gate, applies the guarded domain transition, and commits via a
// version compare-and-swap. Concurrent attempts on the same order are
// serialized in-process by a per-order lock; the repository CAS covers
// cross-process races.
type Service struct {
	repo           ports.Repository
	dedup          ports.EventDedup
	notifier       ports.DeliveryNotifier
	publishBaseURL string

	mu    sync.Mutex
	locks map[string]*orderLock
}

// orderLock is a refcounted per-order mutex. The last releaser evicts the
// entry so the lock table stays bounded by in-flight orders.
type orderLock struct {
	mu   sync.Mutex
	refs int
}

// Option configures optional collaborators.
type Option func(*Service)

// WithEventDedup wires the webhook event dedup store.
func WithEventDedup(dedup ports.EventDedup) Option {
	return func(s *Service) { s.dedup = dedup }
}

// WithDeliveryNotifier wires the post-delivery fan-out collaborator.
func WithDeliveryNotifier(notifier ports.DeliveryNotifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

// WithPublishBaseURL overrides where approved sites are published.
func WithPublishBaseURL(base string) Option {
	return func(s *Service) {
		if strings.TrimSpace(base) != "" {
			s.publishBaseURL = strings.TrimRight(base, "/")
		}
	}
}

// NewService wires the orders service with its dependencies.
func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{
		repo:           repo,
		publishBaseURL: DefaultPublishBaseURL,
		locks:          map[string]*orderLock{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateOrder persists a checkout-fresh order in pending_payment.
func (s *Service) CreateOrder(ctx context.Context, input ordertypes.CreateOrderInput) (*ordertypes.OrderView, error) {
	order, err := domain.NewOrder(input.CustomerID, input.CustomerEmail, input.TotalPriceCents, input.RevisionsIncluded)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, mapError(err)
	}
	return viewFrom(saved), nil
}

// GetOrderView loads the single render shape for an order.
func (s *Service) GetOrderView(ctx context.Context, orderID string) (*ordertypes.OrderView, error) {
	proj, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, mapError(err)
	}
	return viewFrom(proj), nil
}

// ListCustomerOrders returns the views for every order a customer owns.
func (s *Service) ListCustomerOrders(ctx context.Context, customerID string) ([]*ordertypes.OrderView, error) {
	projections, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, mapError(err)
	}
	views := make([]*ordertypes.OrderView, 0, len(projections))
	for _, proj := range projections {
		views = append(views, viewFrom(proj))
	}
	return views, nil
}

// GetPermittedActions reports which portal actions the actor may take.
func (s *Service) GetPermittedActions(ctx context.Context, orderID string, actor ordertypes.Actor) ([]string, error) {
	proj, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, mapError(err)
	}
	actions := domain.PermittedActions(proj.Entity, toActor(actor))
	tokens := make([]string, 0, len(actions))
	for _, action := range actions {
		tokens = append(tokens, string(action))
	}
	return tokens, nil
}

// CapturePayment applies the payment_captured webhook event. Redelivered
// provider event IDs return the current view instead of a conflict. The ID
// only stays marked once the transition commits: a rejected or lost attempt
// releases the claim so the provider's redelivery can still apply the event.
func (s *Service) CapturePayment(ctx context.Context, input ordertypes.PaymentCapturedInput) (*ordertypes.OrderView, error) {
	eventID := strings.TrimSpace(input.EventID)
	claimed := false
	if s.dedup != nil && eventID != "" {
		first, err := s.dedup.MarkProcessed(ctx, eventID)
		if err == nil && !first {
			return s.GetOrderView(ctx, input.OrderID)
		}
		// A dedup store failure degrades to strict transition semantics.
		claimed = err == nil
	}
	view, err := s.transition(ctx, input.OrderID, func(order *domain.Order) error {
		return order.CapturePayment(input.AmountCents)
	})
	if err != nil {
		if claimed {
			_ = s.dedup.Forget(ctx, eventID)
		}
		return nil, err
	}
	return view, nil
}

// SubmitOnboarding applies the onboarding_submitted event.
func (s *Service) SubmitOnboarding(ctx context.Context, input ordertypes.OnboardingInput) (*ordertypes.OrderView, error) {
	profile := domain.BusinessProfile{
		BusinessName: input.Profile.BusinessName,
		Location:     input.Profile.Location,
		BrandColor:   input.Profile.BrandColor,
	}
	return s.transition(ctx, input.OrderID, func(order *domain.Order) error {
		return order.SubmitOnboarding(profile)
	})
}

// StartBuild applies the internal build_started event.
func (s *Service) StartBuild(ctx context.Context, input ordertypes.BuildStartedInput) (*ordertypes.OrderView, error) {
	return s.transition(ctx, input.OrderID, func(order *domain.Order) error {
		return order.StartBuild(input.ExpectedDeliveryDate)
	})
}

// ReadyForReview applies the internal build_ready_for_review event.
func (s *Service) ReadyForReview(ctx context.Context, input ordertypes.BuildReadyInput) (*ordertypes.OrderView, error) {
	return s.transition(ctx, input.OrderID, func(order *domain.Order) error {
		return order.ReadyForReview(input.PreviewURL)
	})
}

// ApproveOrder applies the client_approves event and, once committed, kicks
// off the delivery notification fan-out. Collaborator failures never revert
// the committed transition.
func (s *Service) ApproveOrder(ctx context.Context, input ordertypes.ApproveInput) (*ordertypes.OrderView, error) {
	view, err := s.gatedTransition(ctx, input.OrderID, toActor(input.Actor), domain.ActionApprove, func(order *domain.Order) error {
		return order.Approve(s.publishURL(order.ID))
	})
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		_ = s.notifier.NotifyDelivered(ctx, *view)
	}
	return view, nil
}

// RequestRevision applies the client_requests_revision event: classifies the
// request against the quota, consumes one unit, and loops the order back to
// building. The classification is advisory billing data, never a block. The
// status change and the revision record commit together: a failed write
// persists neither.
func (s *Service) RequestRevision(ctx context.Context, input ordertypes.RevisionRequestInput) (*ordertypes.RevisionOutcome, error) {
	actor := toActor(input.Actor)
	var classification domain.RevisionClassification
	var saved *domain.RevisionRequest
	view, err := s.transitionCommit(ctx, input.OrderID,
		func(order *domain.Order) error {
			if !domain.ActionPermitted(order, actor, domain.ActionRequestRevision) {
				return ErrActionNotAllowed
			}
			var err error
			classification, err = order.RequestRevision(input.Message)
			return err
		},
		func(ctx context.Context, order *domain.Order, expectedVersion int64) (*projection.Projection[*domain.Order], error) {
			request := domain.NewRevisionRequest(order.ID, input.Message, input.AttachmentRefs, classification)
			proj, stored, err := s.repo.UpdateWithRevision(ctx, order, expectedVersion, request)
			if err != nil {
				return nil, err
			}
			saved = stored
			return proj, nil
		})
	if err != nil {
		return nil, err
	}
	return &ordertypes.RevisionOutcome{
		View:           *view,
		RevisionID:     saved.ID,
		Classification: string(saved.Classification),
	}, nil
}

// CancelOrder applies the cancel event.
func (s *Service) CancelOrder(ctx context.Context, input ordertypes.CancelInput) (*ordertypes.OrderView, error) {
	actor := toActor(input.Actor)
	return s.transition(ctx, input.OrderID, func(order *domain.Order) error {
		if !actor.Internal && actor.ID != order.CustomerID {
			return ErrActionNotAllowed
		}
		return order.Cancel(actor.Internal)
	})
}

// AddDeliverable appends an internal planning document to an order.
func (s *Service) AddDeliverable(ctx context.Context, input ordertypes.AddDeliverableInput) (*ordertypes.DeliverableView, error) {
	if _, err := s.repo.GetByID(ctx, input.OrderID); err != nil {
		return nil, mapError(err)
	}
	deliverable, err := domain.NewDeliverable(input.OrderID, input.Type, input.Title, input.Content)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.AddDeliverable(ctx, deliverable)
	if err != nil {
		return nil, mapError(err)
	}
	return deliverableView(saved), nil
}

// ListDeliverables returns the order's documents, gated for customers.
func (s *Service) ListDeliverables(ctx context.Context, orderID string, actor ordertypes.Actor) ([]*ordertypes.DeliverableView, error) {
	proj, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, mapError(err)
	}
	if !domain.ActionPermitted(proj.Entity, toActor(actor), domain.ActionViewDeliverables) {
		return nil, ErrActionNotAllowed
	}
	deliverables, err := s.repo.ListDeliverables(ctx, orderID)
	if err != nil {
		return nil, mapError(err)
	}
	views := make([]*ordertypes.DeliverableView, 0, len(deliverables))
	for _, deliverable := range deliverables {
		views = append(views, deliverableView(deliverable))
	}
	return views, nil
}

// gatedTransition checks the action gate before the engine runs so callers
// can distinguish a disallowed action from an out-of-order event.
func (s *Service) gatedTransition(ctx context.Context, orderID string, actor domain.Actor, action domain.Action, apply func(*domain.Order) error) (*ordertypes.OrderView, error) {
	return s.transition(ctx, orderID, func(order *domain.Order) error {
		if !domain.ActionPermitted(order, actor, action) {
			return ErrActionNotAllowed
		}
		return apply(order)
	})
}

// transition loads the order, normalizes its stored status, applies the
// guarded mutation, and commits with a version compare-and-swap. A rejected
// guard leaves the order untouched; a lost race surfaces as
// ErrInvalidTransition.
func (s *Service) transition(ctx context.Context, orderID string, apply func(*domain.Order) error) (*ordertypes.OrderView, error) {
	return s.transitionCommit(ctx, orderID, apply, s.repo.Update)
}

// transitionCommit is the engine behind every mutation: lock, load,
// normalize, apply, commit. The commit func carries the expected version so
// callers can swap in a write that persists more than the order row.
func (s *Service) transitionCommit(ctx context.Context, orderID string, apply func(*domain.Order) error, commit func(context.Context, *domain.Order, int64) (*projection.Projection[*domain.Order], error)) (*ordertypes.OrderView, error) {
	unlock := s.lockOrder(orderID)
	defer unlock()

	proj, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, mapError(err)
	}
	order := proj.Entity
	order.Status = domain.Normalize(string(order.Status))
	expectedVersion := order.Version

	if err := apply(order); err != nil {
		if errors.Is(err, ErrActionNotAllowed) {
			return nil, err
		}
		return nil, mapError(err)
	}

	saved, err := commit(ctx, order, expectedVersion)
	if err != nil {
		return nil, mapError(err)
	}
	return viewFrom(saved), nil
}

func (s *Service) lockOrder(orderID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[orderID]
	if !ok {
		lock = &orderLock{}
		s.locks[orderID] = lock
	}
	lock.refs++
	s.mu.Unlock()
	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, orderID)
		}
		s.mu.Unlock()
	}
}

func (s *Service) publishURL(orderID string) string {
	return fmt.Sprintf("%s/%s", s.publishBaseURL, orderID)
}

func toActor(actor ordertypes.Actor) domain.Actor {
	return domain.Actor{ID: actor.ID, Internal: actor.Internal}
}

func viewFrom(proj *projection.Projection[*domain.Order]) *ordertypes.OrderView {
	order := proj.Entity
	status := domain.Normalize(string(order.Status))
	presentation := domain.Resolve(status)
	var expected *time.Time
	if order.ExpectedDeliveryDate != nil {
		date := *order.ExpectedDeliveryDate
		expected = &date
	}
	return &ordertypes.OrderView{
		ID:                   order.ID,
		Status:               string(status),
		Percent:              presentation.Percent,
		Step:                 presentation.Step,
		ColorClass:           presentation.ColorClass,
		Icon:                 presentation.Icon,
		RevisionsUsed:        order.RevisionsUsed,
		RevisionsIncluded:    order.RevisionsIncluded,
		TotalPriceCents:      order.TotalPriceCents,
		SiteURL:              order.SiteURL,
		PreviewURL:           order.PreviewURL,
		ExpectedDeliveryDate: expected,
		CustomerID:           order.CustomerID,
		CustomerEmail:        order.CustomerEmail,
		CreatedAt:            proj.Metadata.CreatedAt,
		UpdatedAt:            proj.Metadata.UpdatedAt,
	}
}

func deliverableView(d *domain.Deliverable) *ordertypes.DeliverableView {
	return &ordertypes.DeliverableView{
		ID:        d.ID,
		OrderID:   d.OrderID,
		Type:      d.Type,
		Title:     d.Title,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
	}
}

var _ ports.Service = (*Service)(nil)
