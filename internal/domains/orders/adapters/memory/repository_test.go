package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/craftsite/fulfillment-api/internal/domains/orders/domain"
	"github.com/craftsite/fulfillment-api/internal/domains/orders/ports"
)

func newStoredOrder(t *testing.T, repo *Repository) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder("cust-1", "cust@example.com", 49900, 2)
	require.NoError(t, err)
	proj, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	return proj.Entity
}

func TestCreate_AssignsVersionOne(t *testing.T) {
	repo := NewRepository()
	order := newStoredOrder(t, repo)
	require.Equal(t, int64(1), order.Version)

	proj, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), proj.Entity.Version)
	require.False(t, proj.Metadata.CreatedAt.IsZero())
}

func TestGetByID_NotFound(t *testing.T) {
	repo := NewRepository()
	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestUpdate_VersionCompareAndSwap(t *testing.T) {
	repo := NewRepository()
	order := newStoredOrder(t, repo)
	ctx := context.Background()

	require.NoError(t, order.CapturePayment(49900))
	saved, err := repo.Update(ctx, order, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), saved.Entity.Version)
	require.Equal(t, domain.StatusPaid, saved.Entity.Status)

	// a writer holding the stale version loses the race
	stale := *order
	stale.Status = domain.StatusCancelled
	_, err = repo.Update(ctx, &stale, 1)
	require.ErrorIs(t, err, ports.ErrVersionConflict)

	current, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, current.Entity.Status)
}

func TestUpdate_NotFound(t *testing.T) {
	repo := NewRepository()
	order, err := domain.NewOrder("cust-1", "cust@example.com", 100, 0)
	require.NoError(t, err)
	_, err = repo.Update(context.Background(), order, 1)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestGetByID_ReturnsDefensiveCopy(t *testing.T) {
	repo := NewRepository()
	order := newStoredOrder(t, repo)
	ctx := context.Background()

	proj, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	proj.Entity.Status = domain.StatusDelivered

	fresh, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPendingPayment, fresh.Entity.Status)
}

func TestListByCustomer(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	first := newStoredOrder(t, repo)
	second := newStoredOrder(t, repo)

	other, err := domain.NewOrder("cust-2", "other@example.com", 100, 0)
	require.NoError(t, err)
	_, err = repo.Create(ctx, other)
	require.NoError(t, err)

	projections, err := repo.ListByCustomer(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, projections, 2)
	ids := []string{projections[0].Entity.ID, projections[1].Entity.ID}
	require.ElementsMatch(t, []string{first.ID, second.ID}, ids)
}

func TestDeliverablesAndRevisions(t *testing.T) {
	repo := NewRepository()
	order := newStoredOrder(t, repo)
	ctx := context.Background()

	deliverable, err := domain.NewDeliverable(order.ID, "sitemap", "Proposed sitemap", "Home / Menu")
	require.NoError(t, err)
	saved, err := repo.AddDeliverable(ctx, deliverable)
	require.NoError(t, err)
	require.False(t, saved.CreatedAt.IsZero())

	docs, err := repo.ListDeliverables(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	request := domain.NewRevisionRequest(order.ID, "bigger logo", nil, domain.RevisionIncluded)
	savedReq, err := repo.AddRevisionRequest(ctx, request)
	require.NoError(t, err)
	require.False(t, savedReq.CreatedAt.IsZero())

	requests, err := repo.ListRevisionRequests(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	require.Equal(t, domain.RevisionIncluded, requests[0].Classification)
}

func TestUpdateWithRevision_CommitsBothOrNeither(t *testing.T) {
	repo := NewRepository()
	order := newStoredOrder(t, repo)
	ctx := context.Background()

	require.NoError(t, order.CapturePayment(49900))
	request := domain.NewRevisionRequest(order.ID, "bigger logo", nil, domain.RevisionIncluded)
	proj, saved, err := repo.UpdateWithRevision(ctx, order, 1, request)
	require.NoError(t, err)
	require.Equal(t, int64(2), proj.Entity.Version)
	require.False(t, saved.CreatedAt.IsZero())

	requests, err := repo.ListRevisionRequests(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)

	// a stale writer commits neither the order nor its revision record
	stale := *order
	stale.Status = domain.StatusCancelled
	_, _, err = repo.UpdateWithRevision(ctx, &stale, 1, domain.NewRevisionRequest(order.ID, "again", nil, domain.RevisionExtra))
	require.ErrorIs(t, err, ports.ErrVersionConflict)

	current, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, current.Entity.Status)
	requests, err = repo.ListRevisionRequests(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
}

func TestEventDedup(t *testing.T) {
	dedup := NewEventDedup()
	ctx := context.Background()

	first, err := dedup.MarkProcessed(ctx, "evt-1")
	require.NoError(t, err)
	require.True(t, first)

	again, err := dedup.MarkProcessed(ctx, "evt-1")
	require.NoError(t, err)
	require.False(t, again)

	other, err := dedup.MarkProcessed(ctx, "evt-2")
	require.NoError(t, err)
	require.True(t, other)

	// a released ID can be claimed again
	require.NoError(t, dedup.Forget(ctx, "evt-1"))
	reclaimed, err := dedup.MarkProcessed(ctx, "evt-1")
	require.NoError(t, err)
	require.True(t, reclaimed)
}

func TestWithClock(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := NewRepository()
	repo.WithClock(func() time.Time { return fixed })
	order := newStoredOrder(t, repo)

	proj, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, fixed, proj.Metadata.CreatedAt)
	require.Equal(t, fixed, proj.Metadata.UpdatedAt)
}
