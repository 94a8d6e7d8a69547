package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"inventory-service/internal/models"
)

// fakeStore is an in-memory stand-in for *store.Store covering both the
// ingress and pipeline surfaces
type fakeStore struct {
	mu sync.Mutex

	tenants          map[int64]*models.Tenant
	tenantsByMerch   map[string]*models.Tenant
	events           map[string]*models.WebhookEvent
	eventIDByKey     map[string]string
	recipes          []models.Recipe
	ingredients      map[int64][]models.RecipeIngredient
	materials        map[int64]*models.RawMaterial
	materialByClover map[string]int64
	movements        []models.StockMovement
	failLedger       map[int64]error
	synced           []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tenants:          make(map[int64]*models.Tenant),
		tenantsByMerch:   make(map[string]*models.Tenant),
		events:           make(map[string]*models.WebhookEvent),
		eventIDByKey:     make(map[string]string),
		ingredients:      make(map[int64][]models.RecipeIngredient),
		materials:        make(map[int64]*models.RawMaterial),
		materialByClover: make(map[string]int64),
		failLedger:       make(map[int64]error),
	}
}

func (f *fakeStore) addTenant(t *models.Tenant) {
	f.tenants[t.ID] = t
	f.tenantsByMerch[t.CloverMerchantID] = t
}

func (f *fakeStore) GetTenantByID(_ context.Context, id int64) (*models.Tenant, error) {
	t, ok := f.tenants[id]
	if !ok {
		return nil, fmt.Errorf("tenant not found: %d", id)
	}
	return t, nil
}

func (f *fakeStore) GetTenantByMerchantID(_ context.Context, merchantID string) (*models.Tenant, error) {
	return f.tenantsByMerch[merchantID], nil
}

func (f *fakeStore) InsertWebhookEvent(_ context.Context, event *models.WebhookEvent) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, dup := f.eventIDByKey[event.DeliveryKey]; dup {
		return false, nil
	}
	event.ReceivedAt = time.Now()
	f.events[event.ID] = event
	f.eventIDByKey[event.DeliveryKey] = event.ID
	return true, nil
}

func (f *fakeStore) IsWebhookEventProcessed(_ context.Context, id string) (bool, error) {
	ev, ok := f.events[id]
	if !ok {
		return false, fmt.Errorf("webhook event not found: %s", id)
	}
	return ev.Processed, nil
}

func (f *fakeStore) MarkWebhookEventProcessed(_ context.Context, id string, processingError string) error {
	ev, ok := f.events[id]
	if !ok {
		return fmt.Errorf("webhook event not found: %s", id)
	}
	ev.Processed = true
	if processingError != "" {
		ev.ProcessingError.String = processingError
		ev.ProcessingError.Valid = true
	}
	return nil
}

func (f *fakeStore) GetActiveRecipes(_ context.Context, tenantID int64) ([]models.Recipe, error) {
	var out []models.Recipe
	for _, r := range f.recipes {
		if r.TenantID == tenantID && r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) GetRecipeIngredients(_ context.Context, recipeID int64) ([]models.RecipeIngredient, error) {
	return f.ingredients[recipeID], nil
}

func (f *fakeStore) GetRawMaterialByID(_ context.Context, id int64) (*models.RawMaterial, error) {
	m, ok := f.materials[id]
	if !ok {
		return nil, fmt.Errorf("raw material not found: %d", id)
	}
	return m, nil
}

func (f *fakeStore) GetRawMaterialByCloverItemID(_ context.Context, _ int64, cloverItemID string) (*models.RawMaterial, error) {
	id, ok := f.materialByClover[cloverItemID]
	if !ok {
		return nil, nil
	}
	return f.materials[id], nil
}

func (f *fakeStore) TouchRawMaterialSync(_ context.Context, _ int64, cloverItemID string) (bool, error) {
	f.synced = append(f.synced, cloverItemID)
	_, linked := f.materialByClover[cloverItemID]
	return linked, nil
}

func (f *fakeStore) ApplyStockDelta(_ context.Context, materialID int64, delta decimal.Decimal, movementType, reason string, cloverOrderID *string) (*models.StockMovement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failLedger[materialID]; err != nil {
		return nil, err
	}

	material, ok := f.materials[materialID]
	if !ok {
		return nil, fmt.Errorf("raw material not found: %d", materialID)
	}

	current := material.CurrentStock
	newStock := current.Add(delta)
	if newStock.IsNegative() {
		newStock = decimal.Zero
	}
	material.CurrentStock = newStock

	movement := models.StockMovement{
		ID:            int64(len(f.movements) + 1),
		RawMaterialID: materialID,
		MovementType:  movementType,
		Quantity:      newStock.Sub(current),
		PreviousStock: current,
		NewStock:      newStock,
		Reason:        reason,
		CreatedAt:     time.Now(),
	}
	if cloverOrderID != nil {
		movement.CloverOrderID.String = *cloverOrderID
		movement.CloverOrderID.Valid = true
	}
	f.movements = append(f.movements, movement)
	return &movement, nil
}

// fakeFetcher is an in-memory OrderFetcher
type fakeFetcher struct {
	lineItems map[string][]models.CloverLineItem
	err       error
	calls     int
}

func (f *fakeFetcher) GetOrderLineItems(_ context.Context, _, _, orderID string) ([]models.CloverLineItem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	items, ok := f.lineItems[orderID]
	if !ok {
		return nil, errors.New("unexpected order id in test")
	}
	return items, nil
}

// fakeCache is an in-memory DeliveryCache
type fakeCache struct {
	seen map[string]bool
	err  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{seen: make(map[string]bool)}
}

func (f *fakeCache) IsDeliverySeen(_ context.Context, key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.seen[key], nil
}

func (f *fakeCache) MarkDeliverySeen(_ context.Context, key string, _ time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.seen[key] = true
	return nil
}

// fakePublisher records published messages
type fakePublisher struct {
	published []*models.EventAcceptedMessage
	err       error
}

func (f *fakePublisher) PublishEventAccepted(_ context.Context, msg *models.EventAcceptedMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}
