//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/craftsite/fulfillment-api/internal/domains/orders/domain"
	"github.com/craftsite/fulfillment-api/internal/domains/orders/ports"
	"github.com/craftsite/fulfillment-api/internal/platform/migrations"
)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("fulfillment_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func TestRepository_CreateAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	order, err := domain.NewOrder("cust-1", "cust@example.com", 49900, 2)
	require.NoError(t, err)

	saved, err := repo.Create(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, order.ID, saved.Entity.ID)
	assert.Equal(t, int64(1), saved.Entity.Version)
	assert.Equal(t, domain.StatusPendingPayment, saved.Entity.Status)

	fetched, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "cust@example.com", fetched.Entity.CustomerEmail)
	assert.False(t, fetched.Metadata.CreatedAt.IsZero())
}

func TestRepository_UpdateVersionCompareAndSwap(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	order, err := domain.NewOrder("cust-1", "cust@example.com", 49900, 2)
	require.NoError(t, err)
	_, err = repo.Create(ctx, order)
	require.NoError(t, err)

	require.NoError(t, order.CapturePayment(49900))
	saved, err := repo.Update(ctx, order, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), saved.Entity.Version)
	assert.Equal(t, domain.StatusPaid, saved.Entity.Status)

	stale := *order
	stale.Status = domain.StatusCancelled
	_, err = repo.Update(ctx, &stale, 1)
	require.ErrorIs(t, err, ports.ErrVersionConflict)

	current, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, current.Entity.Status)
}

func TestRepository_UpdateWithRevisionIsTransactional(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	order, err := domain.NewOrder("cust-1", "cust@example.com", 49900, 2)
	require.NoError(t, err)
	_, err = repo.Create(ctx, order)
	require.NoError(t, err)

	require.NoError(t, order.CapturePayment(49900))
	request := domain.NewRevisionRequest(order.ID, "bigger logo", nil, domain.RevisionIncluded)
	proj, saved, err := repo.UpdateWithRevision(ctx, order, 1, request)
	require.NoError(t, err)
	assert.Equal(t, int64(2), proj.Entity.Version)
	assert.Equal(t, domain.StatusPaid, proj.Entity.Status)
	assert.Equal(t, request.ID, saved.ID)

	requests, err := repo.ListRevisionRequests(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)

	// a stale version rolls back the whole transaction, revision row included
	stale := *order
	stale.Status = domain.StatusCancelled
	_, _, err = repo.UpdateWithRevision(ctx, &stale, 1, domain.NewRevisionRequest(order.ID, "again", nil, domain.RevisionExtra))
	require.ErrorIs(t, err, ports.ErrVersionConflict)

	current, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, current.Entity.Status)
	requests, err = repo.ListRevisionRequests(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
}

func TestRepository_UpdateNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	order, err := domain.NewOrder("cust-1", "cust@example.com", 100, 0)
	require.NoError(t, err)

	_, err = repo.Update(context.Background(), order, 1)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_NormalizesLegacyStatusOnRead(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	order, err := domain.NewOrder("cust-1", "cust@example.com", 49900, 2)
	require.NoError(t, err)
	_, err = repo.Create(ctx, order)
	require.NoError(t, err)

	// simulate an older record written with the legacy token
	err = db.WithContext(ctx).Model(&orderRecord{}).
		Where("id = ?", order.ID).
		Update("status", "generating").Error
	require.NoError(t, err)

	fetched, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBuilding, fetched.Entity.Status)
}

func TestRepository_ListByCustomer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		order, err := domain.NewOrder("cust-1", "cust@example.com", 49900, 2)
		require.NoError(t, err)
		_, err = repo.Create(ctx, order)
		require.NoError(t, err)
	}
	other, err := domain.NewOrder("cust-2", "other@example.com", 100, 0)
	require.NoError(t, err)
	_, err = repo.Create(ctx, other)
	require.NoError(t, err)

	projections, err := repo.ListByCustomer(ctx, "cust-1")
	require.NoError(t, err)
	assert.Len(t, projections, 2)
}

func TestRepository_DeliverablesAndRevisions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	order, err := domain.NewOrder("cust-1", "cust@example.com", 49900, 2)
	require.NoError(t, err)
	_, err = repo.Create(ctx, order)
	require.NoError(t, err)

	deliverable, err := domain.NewDeliverable(order.ID, "sitemap", "Proposed sitemap", "Home / Menu")
	require.NoError(t, err)
	_, err = repo.AddDeliverable(ctx, deliverable)
	require.NoError(t, err)

	docs, err := repo.ListDeliverables(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Proposed sitemap", docs[0].Title)

	request := domain.NewRevisionRequest(order.ID, "bigger logo", []string{"ref-1"}, domain.RevisionExtra)
	_, err = repo.AddRevisionRequest(ctx, request)
	require.NoError(t, err)

	requests, err := repo.ListRevisionRequests(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, domain.RevisionExtra, requests[0].Classification)
	assert.Equal(t, []string{"ref-1"}, requests[0].AttachmentRefs)
}
