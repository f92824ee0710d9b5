package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&orderRecord{},
		&deliverableRecord{},
		&revisionRecord{},
	)
}

// Order schema mirrors the orders Postgres adapter. Status always stores the
// canonical taxonomy token.
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

// Deliverable schema mirrors the orders Postgres adapter.
type deliverableRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:64"`
	OrderID   string    `gorm:"column:order_id;index"`
	Type      string    `gorm:"column:type;type:varchar(64)"`
	Title     string    `gorm:"column:title"`
	Content   string    `gorm:"column:content;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

func (deliverableRecord) TableName() string { return "deliverables" }

// Revision schema mirrors the orders Postgres adapter.
type revisionRecord struct {
	ID             string         `gorm:"primaryKey;column:id;size:64"`
	OrderID        string         `gorm:"column:order_id;index"`
	Message        string         `gorm:"column:message;type:text"`
	AttachmentRefs pq.StringArray `gorm:"column:attachment_refs;type:text[]"`
	Classification string         `gorm:"column:classification;type:varchar(16)"`
	CreatedAt      time.Time      `gorm:"column:created_at;index"`
}

func (revisionRecord) TableName() string { return "revision_requests" }
