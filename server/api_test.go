package portalserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/craftsite/fulfillment-api/internal/domains/orders/adapters/memory"
	ordersapp "github.com/craftsite/fulfillment-api/internal/domains/orders/application"
	ordertypes "github.com/craftsite/fulfillment-api/internal/domains/orders/application/types"
)

func newTestRouter(t *testing.T) (*gin.Engine, *ordersapp.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := ordersapp.NewService(memory.NewRepository(), ordersapp.WithEventDedup(memory.NewEventDedup()))
	handlers := ApiHandleFunctions{
		OrdersAPI:   NewOrdersAPI(svc),
		PipelineAPI: NewPipelineAPI(svc),
		WebhooksAPI: NewWebhooksAPI(svc),
	}
	return NewRouterWithGinEngine(gin.New(), handlers), svc
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createOrderHTTP(t *testing.T, router *gin.Engine) ordertypes.OrderView {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/v1/orders", map[string]any{
		"customerId":        "cust-1",
		"customerEmail":     "cust@example.com",
		"totalPriceCents":   49900,
		"revisionsIncluded": 2,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var view ordertypes.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	return view
}

func internalHeaders() map[string]string {
	return map[string]string{"X-Actor-Id": "ops-1", "X-Internal-Actor": "1"}
}

func ownerHeaders() map[string]string {
	return map[string]string{"X-Actor-Id": "cust-1"}
}

func TestCreateOrder_ReturnsView(t *testing.T) {
	router, _ := newTestRouter(t)
	view := createOrderHTTP(t, router)
	require.Equal(t, "pending_payment", view.Status)
	require.Equal(t, 0, view.Percent)
	require.NotEmpty(t, view.ID)
}

func TestPaymentWebhook_DuplicateDeliveryIsAccepted(t *testing.T) {
	router, _ := newTestRouter(t)
	view := createOrderHTTP(t, router)
	payload := map[string]any{"orderId": view.ID, "eventId": "evt-1", "amountCents": 49900}

	rec := doJSON(t, router, http.MethodPost, "/webhooks/payment", payload, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/webhooks/payment", payload, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var after ordertypes.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	require.Equal(t, "paid", after.Status)
}

func TestPaymentWebhook_RejectedDeliveryRetrySucceeds(t *testing.T) {
	router, _ := newTestRouter(t)
	view := createOrderHTTP(t, router)

	// a wrong-amount delivery is rejected and must not burn the event ID
	rec := doJSON(t, router, http.MethodPost, "/webhooks/payment", map[string]any{
		"orderId": view.ID, "eventId": "evt-retry", "amountCents": 1,
	}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/webhooks/payment", map[string]any{
		"orderId": view.ID, "eventId": "evt-retry", "amountCents": 49900,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var after ordertypes.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	require.Equal(t, "paid", after.Status)
}

func TestPaymentWebhook_AmountMismatchIs422(t *testing.T) {
	router, _ := newTestRouter(t)
	view := createOrderHTTP(t, router)

	rec := doJSON(t, router, http.MethodPost, "/webhooks/payment", map[string]any{
		"orderId": view.ID, "eventId": "evt-2", "amountCents": 1,
	}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "/problems/validation-error", problem["type"])
	extensions, ok := problem["extensions"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, extensions["fields"], "amount")
}

func TestInternalEndpoints_RejectPortalActors(t *testing.T) {
	router, _ := newTestRouter(t)
	view := createOrderHTTP(t, router)

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/internal/v1/orders/%s/build/start", view.ID), map[string]any{
		"expectedDeliveryDate": time.Now().AddDate(0, 0, 7).Format(time.RFC3339),
	}, ownerHeaders())
	require.Equal(t, http.StatusForbidden, rec.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "/problems/action-not-allowed", problem["type"])
}

func TestApprove_OutOfOrderEventIs409(t *testing.T) {
	router, _ := newTestRouter(t)
	view := createOrderHTTP(t, router)

	// internal actors pass the gate, so the transition guard answers
	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/orders/%s/approve", view.ID), nil, internalHeaders())
	require.Equal(t, http.StatusConflict, rec.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "/problems/invalid-transition", problem["type"])
}

func TestApprove_StrangerIs403(t *testing.T) {
	router, _ := newTestRouter(t)
	view := createOrderHTTP(t, router)

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/orders/%s/approve", view.ID), nil, map[string]string{"X-Actor-Id": "stranger"})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetOrder_NotFoundIs404(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/v1/orders/missing", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "/problems/not-found", problem["type"])
}

func TestFullLifecycleOverHTTP(t *testing.T) {
	router, _ := newTestRouter(t)
	view := createOrderHTTP(t, router)
	base := "/v1/orders/" + view.ID

	rec := doJSON(t, router, http.MethodPost, "/webhooks/payment", map[string]any{"orderId": view.ID, "eventId": "evt-1", "amountCents": 49900}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, base+"/onboarding", map[string]any{
		"businessName": "Bakery", "location": "Lisbon", "brandColor": "#ff8800",
	}, ownerHeaders())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/internal/v1/orders/%s/build/start", view.ID), map[string]any{
		"expectedDeliveryDate": time.Now().AddDate(0, 0, 7).Format(time.RFC3339),
	}, internalHeaders())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/internal/v1/orders/%s/build/ready", view.ID), map[string]any{
		"previewUrl": "https://preview.example.com/p/1",
	}, internalHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	var previewed ordertypes.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &previewed))
	require.Equal(t, "preview", previewed.Status)

	rec = doJSON(t, router, http.MethodGet, base+"/actions", nil, ownerHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "approve")

	rec = doJSON(t, router, http.MethodPost, base+"/approve", nil, ownerHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	var delivered ordertypes.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &delivered))
	require.Equal(t, "delivered", delivered.Status)
	require.Equal(t, 100, delivered.Percent)
	require.NotEmpty(t, delivered.SiteURL)

	rec = doJSON(t, router, http.MethodGet, "/v1/customers/cust-1/orders", nil, ownerHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	var list []ordertypes.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
}

func TestRevisionEndpoint_ReturnsOutcome(t *testing.T) {
	router, svc := newTestRouter(t)
	view := createOrderHTTP(t, router)
	ctx := context.Background()

	_, err := svc.CapturePayment(ctx, ordertypes.PaymentCapturedInput{OrderID: view.ID, AmountCents: 49900})
	require.NoError(t, err)
	_, err = svc.SubmitOnboarding(ctx, ordertypes.OnboardingInput{OrderID: view.ID, Profile: ordertypes.BusinessProfileInput{BusinessName: "Bakery", Location: "Lisbon"}})
	require.NoError(t, err)
	_, err = svc.StartBuild(ctx, ordertypes.BuildStartedInput{OrderID: view.ID, ExpectedDeliveryDate: time.Now().AddDate(0, 0, 7)})
	require.NoError(t, err)
	_, err = svc.ReadyForReview(ctx, ordertypes.BuildReadyInput{OrderID: view.ID, PreviewURL: "https://preview.example.com/p/1"})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/v1/orders/"+view.ID+"/revisions", map[string]any{
		"message": "make the logo bigger",
	}, ownerHeaders())
	require.Equal(t, http.StatusOK, rec.Code)

	var outcome ordertypes.RevisionOutcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	require.Equal(t, "included", outcome.Classification)
	require.Equal(t, "building", outcome.View.Status)
}
