package api

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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-service/internal/clover"
	"inventory-service/internal/models"
	"inventory-service/internal/service"
)

// stubStore backs the ingress with one known tenant and records accepted
// events; the pipeline-facing methods satisfy the interface but only the
// event bookkeeping is reachable from these tests.
type stubStore struct {
	tenant *models.Tenant
	events []*models.WebhookEvent
}

func (s *stubStore) GetTenantByMerchantID(_ context.Context, merchantID string) (*models.Tenant, error) {
	if s.tenant != nil && s.tenant.CloverMerchantID == merchantID {
		return s.tenant, nil
	}
	return nil, nil
}

func (s *stubStore) InsertWebhookEvent(_ context.Context, event *models.WebhookEvent) (bool, error) {
	for _, ev := range s.events {
		if ev.DeliveryKey == event.DeliveryKey {
			return false, nil
		}
	}
	s.events = append(s.events, event)
	return true, nil
}

func (s *stubStore) GetTenantByID(_ context.Context, id int64) (*models.Tenant, error) {
	return s.tenant, nil
}

func (s *stubStore) IsWebhookEventProcessed(_ context.Context, id string) (bool, error) {
	return false, nil
}

func (s *stubStore) MarkWebhookEventProcessed(_ context.Context, id string, processingError string) error {
	return nil
}

func (s *stubStore) GetActiveRecipes(_ context.Context, tenantID int64) ([]models.Recipe, error) {
	return nil, nil
}

func (s *stubStore) GetRecipeIngredients(_ context.Context, recipeID int64) ([]models.RecipeIngredient, error) {
	return nil, nil
}

func (s *stubStore) GetRawMaterialByID(_ context.Context, id int64) (*models.RawMaterial, error) {
	return nil, fmt.Errorf("raw material not found: %d", id)
}

func (s *stubStore) GetRawMaterialByCloverItemID(_ context.Context, tenantID int64, cloverItemID string) (*models.RawMaterial, error) {
	return nil, nil
}

func (s *stubStore) TouchRawMaterialSync(_ context.Context, tenantID int64, cloverItemID string) (bool, error) {
	return false, nil
}

func (s *stubStore) ApplyStockDelta(_ context.Context, materialID int64, delta decimal.Decimal, movementType, reason string, cloverOrderID *string) (*models.StockMovement, error) {
	return nil, nil
}

type stubCache struct{}

func (stubCache) IsDeliverySeen(context.Context, string) (bool, error)          { return false, nil }
func (stubCache) MarkDeliverySeen(context.Context, string, time.Duration) error { return nil }

type stubPublisher struct {
	published int
}

func (p *stubPublisher) PublishEventAccepted(context.Context, *models.EventAcceptedMessage) error {
	p.published++
	return nil
}

type stubFetcher struct{}

func (stubFetcher) GetOrderLineItems(context.Context, string, string, string) ([]models.CloverLineItem, error) {
	return nil, clover.ErrOrderNotFound
}

func newTestRouter() (*gin.Engine, *stubStore, *stubPublisher) {
	gin.SetMode(gin.TestMode)

	st := &stubStore{tenant: &models.Tenant{
		ID:               1,
		Name:             "Trattoria",
		CloverMerchantID: "M1",
		WebhookSecret:    "s3cret",
		APIToken:         "tok",
		IsActive:         true,
	}}
	pub := &stubPublisher{}

	pipeline := service.NewPipeline(st, stubFetcher{})
	ingress := service.NewIngress(st, stubCache{}, pub, pipeline, time.Hour)

	router := gin.New()
	NewHandler(ingress).SetupRoutes(router)
	return router, st, pub
}

func postWebhook(router *gin.Engine, path string, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Clover-Signature", signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookAccepted(t *testing.T) {
	router, st, pub := newTestRouter()

	payload := models.CloverWebhookPayload{
		AppID: "app-1",
		Merchants: map[string][]models.CloverMerchantEvent{
			"M1": {{ObjectID: "P:PAY1", Type: models.WebhookOpCreate, TS: 1700000000000}},
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	sig := clover.SignPayload("1700000000000", body, "s3cret")

	w := postWebhook(router, "/webhook", body, sig)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, st.events, 1)
	assert.Equal(t, 1, pub.published)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	router, st, _ := newTestRouter()

	payload := models.CloverWebhookPayload{
		AppID: "app-1",
		Merchants: map[string][]models.CloverMerchantEvent{
			"M1": {{ObjectID: "P:PAY1", Type: models.WebhookOpCreate, TS: 1}},
		},
	}
	body, _ := json.Marshal(payload)
	sig := clover.SignPayload("1700000000000", []byte("different body"), "s3cret")

	w := postWebhook(router, "/webhook", body, sig)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, st.events)
}

func TestWebhookUnknownMerchant(t *testing.T) {
	router, _, _ := newTestRouter()

	payload := models.CloverWebhookPayload{
		AppID: "app-1",
		Merchants: map[string][]models.CloverMerchantEvent{
			"STRANGER": {{ObjectID: "O:X", Type: models.WebhookOpCreate, TS: 1}},
		},
	}
	body, _ := json.Marshal(payload)
	sig := clover.SignPayload("1700000000000", body, "s3cret")

	w := postWebhook(router, "/webhook", body, sig)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookMalformedBody(t *testing.T) {
	router, _, _ := newTestRouter()

	w := postWebhook(router, "/webhook", []byte("{not json"), "t=1,v1=00")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// structurally valid JSON without merchants is still malformed
	w = postWebhook(router, "/webhook", []byte(`{"appId":"a"}`), "t=1,v1=00")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLegacyWebhookNormalized(t *testing.T) {
	router, st, pub := newTestRouter()

	legacy := models.LegacyWebhookPayload{
		AppID:    "app-1",
		Type:     models.WebhookOpCreate,
		ObjectID: "P:PAY2",
		TS:       1700000000001,
	}
	body, err := json.Marshal(legacy)
	require.NoError(t, err)
	sig := clover.SignPayload("1700000000001", body, "s3cret")

	w := postWebhook(router, "/webhook/M1", body, sig)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, st.events, 1)
	assert.Equal(t, "P:PAY2", st.events[0].ObjectID)
	assert.Equal(t, 1, pub.published)
}

func TestHealthEndpoints(t *testing.T) {
	router, _, _ := newTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
