package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Tenant represents one restaurant account, the unit of data isolation
type Tenant struct {
	ID               int64          `db:"id" json:"id"`
	Name             string         `db:"name" json:"name"`
	CloverMerchantID string         `db:"clover_merchant_id" json:"clover_merchant_id"`
	WebhookSecret    string         `db:"webhook_secret" json:"-"`
	AuthCode         sql.NullString `db:"auth_code" json:"-"`
	APIToken         string         `db:"api_token" json:"-"`
	IsActive         bool           `db:"is_active" json:"is_active"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// RawMaterial represents a physical ingredient tracked in stock.
// CurrentStock is written only through Store.ApplyStockDelta.
type RawMaterial struct {
	ID             int64           `db:"id" json:"id"`
	TenantID       int64           `db:"tenant_id" json:"tenant_id"`
	Name           string          `db:"name" json:"name"`
	Unit           string          `db:"unit" json:"unit"`
	CurrentStock   decimal.Decimal `db:"current_stock" json:"current_stock"`
	MinThreshold   decimal.Decimal `db:"min_threshold" json:"min_threshold"`
	MaxThreshold   decimal.Decimal `db:"max_threshold" json:"max_threshold"`
	CostPerUnit    decimal.Decimal `db:"cost_per_unit" json:"cost_per_unit"`
	CloverItemID   sql.NullString  `db:"clover_item_id" json:"clover_item_id,omitempty"`
	CloverSyncedAt sql.NullTime    `db:"clover_synced_at" json:"clover_synced_at,omitempty"`
	IsActive       bool            `db:"is_active" json:"is_active"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// Recipe maps a sellable catalog item to raw material quantities
type Recipe struct {
	ID           int64          `db:"id" json:"id"`
	TenantID     int64          `db:"tenant_id" json:"tenant_id"`
	Name         string         `db:"name" json:"name"`
	CloverItemID sql.NullString `db:"clover_item_id" json:"clover_item_id,omitempty"`
	IsActive     bool           `db:"is_active" json:"is_active"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`

	Ingredients []RecipeIngredient `db:"-" json:"ingredients,omitempty"`
}

// RecipeIngredient is one (recipe, raw material) pair. Quantity and Unit are
// always stored normalized to the raw material's canonical unit.
type RecipeIngredient struct {
	ID            int64           `db:"id" json:"id"`
	RecipeID      int64           `db:"recipe_id" json:"recipe_id"`
	RawMaterialID int64           `db:"raw_material_id" json:"raw_material_id"`
	Quantity      decimal.Decimal `db:"quantity" json:"quantity"`
	Unit          string          `db:"unit" json:"unit"`
}

// Movement types
const (
	MovementTypeSale       = "sale"
	MovementTypePurchase   = "purchase"
	MovementTypeAdjustment = "adjustment"
	MovementTypeWaste      = "waste"
)

// StockMovement is an append-only audit row for one stock change.
// Invariant: NewStock = PreviousStock + Quantity and NewStock >= 0.
type StockMovement struct {
	ID            int64           `db:"id" json:"id"`
	RawMaterialID int64           `db:"raw_material_id" json:"raw_material_id"`
	MovementType  string          `db:"movement_type" json:"movement_type"`
	Quantity      decimal.Decimal `db:"quantity" json:"quantity"`
	PreviousStock decimal.Decimal `db:"previous_stock" json:"previous_stock"`
	NewStock      decimal.Decimal `db:"new_stock" json:"new_stock"`
	Reason        string          `db:"reason" json:"reason"`
	CloverOrderID sql.NullString  `db:"clover_order_id" json:"clover_order_id,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// WebhookEvent statuses are a processed flag plus an optional error note;
// the row doubles as the idempotency ledger for inbound deliveries.
type WebhookEvent struct {
	ID              string         `db:"id" json:"id"`
	TenantID        int64          `db:"tenant_id" json:"tenant_id"`
	DeliveryKey     string         `db:"delivery_key" json:"delivery_key"`
	EventType       string         `db:"event_type" json:"event_type"`
	ObjectID        string         `db:"object_id" json:"object_id"`
	RawPayload      []byte         `db:"raw_payload" json:"-"`
	Processed       bool           `db:"processed" json:"processed"`
	ProcessingError sql.NullString `db:"processing_error" json:"processing_error,omitempty"`
	ReceivedAt      time.Time      `db:"received_at" json:"received_at"`
	ProcessedAt     sql.NullTime   `db:"processed_at" json:"processed_at,omitempty"`
}
