package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Deliverable is a planning document produced for the client (sitemap draft,
// copy draft, ...). Append-only: created by the internal team, read-only to
// the customer, never mutated or deleted.
type Deliverable struct {
	ID        string
	OrderID   string
	Type      string
	Title     string
	Content   string
	CreatedAt time.Time
}

// NewDeliverable validates and constructs a deliverable for an order.
func NewDeliverable(orderID, docType, title, content string) (*Deliverable, error) {
	fields := map[string]string{}
	if strings.TrimSpace(docType) == "" {
		fields["type"] = "deliverable type is required"
	}
	if strings.TrimSpace(title) == "" {
		fields["title"] = "deliverable title is required"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return &Deliverable{
		ID:      uuid.NewString(),
		OrderID: orderID,
		Type:    docType,
		Title:   title,
		Content: content,
	}, nil
}

// RevisionRequest records a client's request for changes, classified at
// creation time against the order's quota. Append-only.
type RevisionRequest struct {
	ID             string
	OrderID        string
	Message        string
	AttachmentRefs []string
	Classification RevisionClassification
	CreatedAt      time.Time
}

// NewRevisionRequest builds the record persisted alongside the
// review-to-building transition.
func NewRevisionRequest(orderID, message string, attachmentRefs []string, classification RevisionClassification) *RevisionRequest {
	return &RevisionRequest{
		ID:             uuid.NewString(),
		OrderID:        orderID,
		Message:        message,
		AttachmentRefs: append([]string{}, attachmentRefs...),
		Classification: classification,
	}
}
