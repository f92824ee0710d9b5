package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/craftsite/fulfillment-api/internal/domains/orders/ports"
)

var _ ports.CRMSync = (*Client)(nil)

// Client pushes delivered orders to the CRM over its JSON webhook API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient instantiates the CRM client with sane defaults.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("crm base URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}, nil
}

type deliveredPayload struct {
	OrderID       string `json:"orderId"`
	CustomerEmail string `json:"customerEmail"`
	SiteURL       string `json:"siteUrl"`
}

// SyncDelivered posts the delivery record to the CRM. The Idempotency-Key
// header is derived from the order so provider-side retries collapse.
func (c *Client) SyncDelivered(ctx context.Context, orderID, customerEmail, siteURL string) error {
	if c == nil || c.httpClient == nil {
		return errors.New("crm client not configured")
	}
	if strings.TrimSpace(orderID) == "" {
		return errors.New("crm order reference is required")
	}

	body, err := json.Marshal(deliveredPayload{OrderID: orderID, CustomerEmail: customerEmail, SiteURL: siteURL})
	if err != nil {
		return fmt.Errorf("encode crm payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/deliveries", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build crm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "delivery-"+orderID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("crm sync request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("crm sync returned status %d", resp.StatusCode)
	}
	return nil
}
