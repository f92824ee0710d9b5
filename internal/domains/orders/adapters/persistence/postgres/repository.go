package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/craftsite/fulfillment-api/internal/domains/orders/domain"
	"github.com/craftsite/fulfillment-api/internal/domains/orders/ports"
	"github.com/craftsite/fulfillment-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM. Updates run an
// optimistic version compare-and-swap so a lost race never commits.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&orderRecord{}, &deliverableRecord{}, &revisionRecord{})
	}
	return repo
}

// orderRecord maps the order aggregate to a relational table. Status always
// stores the canonical taxonomy token.
type orderRecord struct {
	ID                   string     `gorm:"primaryKey;column:id;size:64"`
	Status               string     `gorm:"column:status;type:varchar(32);index"`
	TotalPriceCents      int64      `gorm:"column:total_price_cents"`
	RevisionsIncluded    int        `gorm:"column:revisions_included"`
	RevisionsUsed        int        `gorm:"column:revisions_used"`
	ExpectedDeliveryDate *time.Time `gorm:"column:expected_delivery_date"`
	SiteURL              string     `gorm:"column:site_url"`
	PreviewURL           string     `gorm:"column:preview_url"`
	BusinessName         string     `gorm:"column:business_name"`
	Location             string     `gorm:"column:location"`
	BrandColor           string     `gorm:"column:brand_color"`
	CustomerID           string     `gorm:"column:customer_id;index"`
	CustomerEmail        string     `gorm:"column:customer_email"`
	Version              int64      `gorm:"column:version"`
	CreatedAt            time.Time  `gorm:"column:created_at"`
	UpdatedAt            time.Time  `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type deliverableRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:64"`
	OrderID   string    `gorm:"column:order_id;index"`
	Type      string    `gorm:"column:type;type:varchar(64)"`
	Title     string    `gorm:"column:title"`
	Content   string    `gorm:"column:content;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

func (deliverableRecord) TableName() string { return "deliverables" }

type revisionRecord struct {
	ID             string         `gorm:"primaryKey;column:id;size:64"`
	OrderID        string         `gorm:"column:order_id;index"`
	Message        string         `gorm:"column:message;type:text"`
	AttachmentRefs pq.StringArray `gorm:"column:attachment_refs;type:text[]"`
	Classification string         `gorm:"column:classification;type:varchar(16)"`
	CreatedAt      time.Time      `gorm:"column:created_at;index"`
}

func (revisionRecord) TableName() string { return "revision_requests" }

// Create inserts a new order with version 1.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*projection.Projection[*domain.Order], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	record.Version = 1
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	order.Version = record.Version
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches an order by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*projection.Projection[*domain.Order], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// Update commits the order only when the expected version still holds; a
// stale version surfaces as ports.ErrVersionConflict.
func (r *Repository) Update(ctx context.Context, order *domain.Order, expectedVersion int64) (*projection.Projection[*domain.Order], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := casUpdate(r.db.WithContext(ctx), toRecord(order), expectedVersion); err != nil {
		return nil, err
	}
	order.Version = expectedVersion + 1
	return r.GetByID(ctx, order.ID)
}

// UpdateWithRevision commits the order update and the revision row in one
// transaction so a lost race or insert failure leaves neither behind.
func (r *Repository) UpdateWithRevision(ctx context.Context, order *domain.Order, expectedVersion int64, request *domain.RevisionRequest) (*projection.Projection[*domain.Order], *domain.RevisionRequest, error) {
	if err := r.ensureDB(); err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, errors.New("order is nil")
	}
	if request == nil {
		return nil, nil, errors.New("revision request is nil")
	}
	revision := revisionRecord{
		ID:             request.ID,
		OrderID:        request.OrderID,
		Message:        request.Message,
		AttachmentRefs: pq.StringArray(request.AttachmentRefs),
		Classification: string(request.Classification),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := casUpdate(tx, toRecord(order), expectedVersion); err != nil {
			return err
		}
		return tx.Create(&revision).Error
	})
	if err != nil {
		return nil, nil, err
	}
	order.Version = expectedVersion + 1
	proj, err := r.GetByID(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}
	saved := *request
	saved.CreatedAt = revision.CreatedAt
	return proj, &saved, nil
}

// casUpdate runs the version compare-and-swap against the given handle,
// which may be a transaction.
func casUpdate(db *gorm.DB, record orderRecord, expectedVersion int64) error {
	result := db.
		Model(&orderRecord{}).
		Where("id = ? AND version = ?", record.ID, expectedVersion).
		Updates(map[string]any{
			"status":                 record.Status,
			"revisions_used":         record.RevisionsUsed,
			"expected_delivery_date": record.ExpectedDeliveryDate,
			"site_url":               record.SiteURL,
			"preview_url":            record.PreviewURL,
			"business_name":          record.BusinessName,
			"location":               record.Location,
			"brand_color":            record.BrandColor,
			"version":                expectedVersion + 1,
			"updated_at":             gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var existing orderRecord
		if err := db.First(&existing, "id = ?", record.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		return ports.ErrVersionConflict
	}
	return nil
}

// ListByCustomer returns every order owned by the customer.
func (r *Repository) ListByCustomer(ctx context.Context, customerID string) ([]*projection.Projection[*domain.Order], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	projections := make([]*projection.Projection[*domain.Order], 0, len(records))
	for i := range records {
		projections = append(projections, records[i].toProjection())
	}
	return projections, nil
}

// AddDeliverable appends a document row for the order.
func (r *Repository) AddDeliverable(ctx context.Context, deliverable *domain.Deliverable) (*domain.Deliverable, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if deliverable == nil {
		return nil, errors.New("deliverable is nil")
	}
	record := deliverableRecord{
		ID:      deliverable.ID,
		OrderID: deliverable.OrderID,
		Type:    deliverable.Type,
		Title:   deliverable.Title,
		Content: deliverable.Content,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	saved := *deliverable
	saved.CreatedAt = record.CreatedAt
	return &saved, nil
}

// ListDeliverables returns an order's documents oldest first.
func (r *Repository) ListDeliverables(ctx context.Context, orderID string) ([]*domain.Deliverable, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []deliverableRecord
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	deliverables := make([]*domain.Deliverable, 0, len(records))
	for _, record := range records {
		deliverables = append(deliverables, &domain.Deliverable{
			ID:        record.ID,
			OrderID:   record.OrderID,
			Type:      record.Type,
			Title:     record.Title,
			Content:   record.Content,
			CreatedAt: record.CreatedAt,
		})
	}
	return deliverables, nil
}

// AddRevisionRequest appends a revision row for the order.
func (r *Repository) AddRevisionRequest(ctx context.Context, request *domain.RevisionRequest) (*domain.RevisionRequest, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if request == nil {
		return nil, errors.New("revision request is nil")
	}
	record := revisionRecord{
		ID:             request.ID,
		OrderID:        request.OrderID,
		Message:        request.Message,
		AttachmentRefs: pq.StringArray(request.AttachmentRefs),
		Classification: string(request.Classification),
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	saved := *request
	saved.CreatedAt = record.CreatedAt
	return &saved, nil
}

// ListRevisionRequests returns an order's revision history oldest first.
func (r *Repository) ListRevisionRequests(ctx context.Context, orderID string) ([]*domain.RevisionRequest, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []revisionRecord
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	requests := make([]*domain.RevisionRequest, 0, len(records))
	for _, record := range records {
		requests = append(requests, &domain.RevisionRequest{
			ID:             record.ID,
			OrderID:        record.OrderID,
			Message:        record.Message,
			AttachmentRefs: []string(record.AttachmentRefs),
			Classification: domain.RevisionClassification(record.Classification),
			CreatedAt:      record.CreatedAt,
		})
	}
	return requests, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	record := orderRecord{
		ID:                   order.ID,
		Status:               string(domain.Normalize(string(order.Status))),
		TotalPriceCents:      order.TotalPriceCents,
		RevisionsIncluded:    order.RevisionsIncluded,
		RevisionsUsed:        order.RevisionsUsed,
		ExpectedDeliveryDate: order.ExpectedDeliveryDate,
		SiteURL:              order.SiteURL,
		PreviewURL:           order.PreviewURL,
		CustomerID:           order.CustomerID,
		CustomerEmail:        order.CustomerEmail,
		Version:              order.Version,
	}
	if order.Onboarding != nil {
		record.BusinessName = order.Onboarding.BusinessName
		record.Location = order.Onboarding.Location
		record.BrandColor = order.Onboarding.BrandColor
	}
	return record
}

func (r orderRecord) toProjection() *projection.Projection[*domain.Order] {
	order := &domain.Order{
		ID:                   r.ID,
		Status:               domain.Normalize(r.Status),
		TotalPriceCents:      r.TotalPriceCents,
		RevisionsIncluded:    r.RevisionsIncluded,
		RevisionsUsed:        r.RevisionsUsed,
		ExpectedDeliveryDate: r.ExpectedDeliveryDate,
		SiteURL:              r.SiteURL,
		PreviewURL:           r.PreviewURL,
		CustomerID:           r.CustomerID,
		CustomerEmail:        r.CustomerEmail,
		Version:              r.Version,
	}
	if r.BusinessName != "" {
		order.Onboarding = &domain.BusinessProfile{
			BusinessName: r.BusinessName,
			Location:     r.Location,
			BrandColor:   r.BrandColor,
		}
	}
	return &projection.Projection[*domain.Order]{
		Entity: order,
		Metadata: projection.Metadata{
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		},
	}
}
