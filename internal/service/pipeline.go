package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"inventory-service/internal/clover"
	"inventory-service/internal/models"
	"inventory-service/internal/unit"
	"inventory-service/internal/util"
)

// PipelineStore is the persistence surface the pipeline needs; *store.Store
// satisfies it.
type PipelineStore interface {
	GetTenantByID(ctx context.Context, id int64) (*models.Tenant, error)
	IsWebhookEventProcessed(ctx context.Context, id string) (bool, error)
	MarkWebhookEventProcessed(ctx context.Context, id string, processingError string) error
	GetActiveRecipes(ctx context.Context, tenantID int64) ([]models.Recipe, error)
	GetRecipeIngredients(ctx context.Context, recipeID int64) ([]models.RecipeIngredient, error)
	GetRawMaterialByID(ctx context.Context, id int64) (*models.RawMaterial, error)
	GetRawMaterialByCloverItemID(ctx context.Context, tenantID int64, cloverItemID string) (*models.RawMaterial, error)
	TouchRawMaterialSync(ctx context.Context, tenantID int64, cloverItemID string) (bool, error)
	ApplyStockDelta(ctx context.Context, materialID int64, delta decimal.Decimal, movementType, reason string, cloverOrderID *string) (*models.StockMovement, error)
}

// OrderFetcher is the read-only platform surface the pipeline needs;
// *clover.Client satisfies it.
type OrderFetcher interface {
	GetOrderLineItems(ctx context.Context, apiToken, merchantID, orderID string) ([]models.CloverLineItem, error)
}

// Pipeline turns accepted webhook events into stock deductions
type Pipeline struct {
	store  PipelineStore
	clover OrderFetcher
	logger *zap.Logger
}

// NewPipeline creates the deduction pipeline
func NewPipeline(store PipelineStore, cloverClient OrderFetcher) *Pipeline {
	return &Pipeline{
		store:  store,
		clover: cloverClient,
		logger: util.GetLogger(),
	}
}

// ProcessEvent runs one accepted event through decode, order resolution,
// recipe resolution, unit conversion, and the ledger. Every branch terminates
// by marking the event processed, except a hard order-lookup failure, which
// leaves the event unprocessed so queue redelivery can retry it.
func (p *Pipeline) ProcessEvent(ctx context.Context, msg *models.EventAcceptedMessage) error {
	ctx, span := util.StartSpan(ctx, "Pipeline.ProcessEvent")
	defer span.End()

	log := p.logger.With(
		zap.String("event_id", msg.EventID),
		zap.String("object_id", msg.ObjectID),
		zap.String("event_type", msg.EventType),
		zap.Int64("tenant_id", msg.TenantID))

	log.Info("Processing webhook event")

	processed, err := p.store.IsWebhookEventProcessed(ctx, msg.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event state: %w", err)
	}
	if processed {
		log.Info("Event already processed, skipping")
		util.EventsProcessedTotal.WithLabelValues("duplicate").Inc()
		return nil
	}

	tenant, err := p.store.GetTenantByID(ctx, msg.TenantID)
	if err != nil {
		return fmt.Errorf("failed to load tenant: %w", err)
	}

	entityType, entityID := clover.DecodeObjectID(msg.ObjectID)

	var note string
	var outcome string

	switch entityType {
	case clover.EntityOrder:
		if msg.EventType != models.WebhookOpCreate {
			note = fmt.Sprintf("ignored: order %s event", msg.EventType)
			outcome = "ignored"
			break
		}
		note, err = p.processOrderEvent(ctx, tenant, entityID, log)
		if err != nil {
			// hard failure: leave unprocessed for redelivery
			util.EventsProcessedTotal.WithLabelValues("retryable_error").Inc()
			return err
		}
		outcome = "order"

	case clover.EntityInventoryItem:
		note = p.processInventoryEvent(ctx, tenant, entityID, msg.EventType, log)
		outcome = "inventory"

	case clover.EntityPayment:
		note = "ignored: payment event"
		outcome = "payment"

	default:
		note = fmt.Sprintf("ignored: %s event", entityType)
		outcome = "ignored"
		log.Info("Unhandled entity type logged for analysis",
			zap.String("entity_type", string(entityType)),
			zap.String("entity_id", entityID))
	}

	if err := p.store.MarkWebhookEventProcessed(ctx, msg.EventID, note); err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}

	util.EventsProcessedTotal.WithLabelValues(outcome).Inc()
	log.Info("Webhook event processed", zap.String("note", note))
	return nil
}

// processOrderEvent deducts stock for every genuinely sold item on an order.
// Soft failures (unknown order, unmatched items, degraded conversions, a
// single failed ledger write) are collected into the returned note and never
// abort sibling items or ingredients. The returned error is reserved for hard
// order-lookup failures.
func (p *Pipeline) processOrderEvent(ctx context.Context, tenant *models.Tenant, orderID string, log *zap.Logger) (string, error) {
	lineItems, err := p.clover.GetOrderLineItems(ctx, tenant.APIToken, tenant.CloverMerchantID, orderID)
	if errors.Is(err, clover.ErrOrderNotFound) {
		log.Warn("Order not found on platform", zap.String("order_id", orderID))
		return fmt.Sprintf("order %s not found", orderID), nil
	}
	if err != nil {
		log.Error("Order lookup failed", zap.String("order_id", orderID), zap.Error(err))
		return "", fmt.Errorf("order lookup failed for %s: %w", orderID, err)
	}

	soldItems := clover.AggregateSoldItems(lineItems)
	if len(soldItems) == 0 {
		return "no revenue line items", nil
	}

	recipes, err := p.store.GetActiveRecipes(ctx, tenant.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load recipes: %w", err)
	}

	var notes []string
	for _, item := range soldItems {
		if n := p.deductSoldItem(ctx, tenant, recipes, item, orderID, log); n != "" {
			notes = append(notes, n)
		}
	}
	return strings.Join(notes, "; "), nil
}

// deductSoldItem resolves one sold item and applies its deductions. Returns
// an operator note when anything was degraded, unmatched, or failed.
func (p *Pipeline) deductSoldItem(ctx context.Context, tenant *models.Tenant, recipes []models.Recipe, item clover.SoldItem, orderID string, log *zap.Logger) string {
	match := ResolveRecipe(recipes, item.ItemID, item.Name)
	if match != nil {
		note := p.deductRecipe(ctx, match.Recipe, item, orderID, log)
		if match.Ambiguous {
			ambiguity := fmt.Sprintf("ambiguous recipe match for %q (picked %q)", item.Name, match.Recipe.Name)
			log.Warn("Ambiguous recipe match flagged for review",
				zap.String("item_name", item.Name),
				zap.String("recipe_name", match.Recipe.Name))
			if note == "" {
				return ambiguity
			}
			return ambiguity + "; " + note
		}
		return note
	}

	// legacy fallback: the catalog item is linked straight to a raw material
	material, err := p.store.GetRawMaterialByCloverItemID(ctx, tenant.ID, item.ItemID)
	if err != nil {
		log.Error("Legacy inventory lookup failed", zap.String("item_id", item.ItemID), zap.Error(err))
		return fmt.Sprintf("inventory lookup failed for %q: %v", item.Name, err)
	}
	if material != nil {
		reason := fmt.Sprintf("sale: %s", item.Name)
		if _, err := p.store.ApplyStockDelta(ctx, material.ID, item.Quantity.Neg(), models.MovementTypeSale, reason, &orderID); err != nil {
			log.Error("Ledger write failed",
				zap.Int64("material_id", material.ID),
				zap.Error(err))
			return fmt.Sprintf("ledger failure for %q: %v", material.Name, err)
		}
		return ""
	}

	util.UnmatchedItemsTotal.Inc()
	log.Warn("Sold item matched no recipe or inventory item",
		zap.String("item_id", item.ItemID),
		zap.String("item_name", item.Name))
	return fmt.Sprintf("unmatched item %q", item.Name)
}

// deductRecipe applies one recipe's ingredient list, scaled by the sold
// quantity. Each ingredient is an independent unit of work.
func (p *Pipeline) deductRecipe(ctx context.Context, recipe *models.Recipe, item clover.SoldItem, orderID string, log *zap.Logger) string {
	ingredients, err := p.store.GetRecipeIngredients(ctx, recipe.ID)
	if err != nil {
		log.Error("Failed to load recipe ingredients", zap.Int64("recipe_id", recipe.ID), zap.Error(err))
		return fmt.Sprintf("failed to load ingredients of %q: %v", recipe.Name, err)
	}

	var notes []string
	for _, ingredient := range ingredients {
		material, err := p.store.GetRawMaterialByID(ctx, ingredient.RawMaterialID)
		if err != nil {
			log.Error("Failed to load raw material", zap.Int64("material_id", ingredient.RawMaterialID), zap.Error(err))
			notes = append(notes, fmt.Sprintf("missing material %d: %v", ingredient.RawMaterialID, err))
			continue
		}

		// persisted ingredients are normalized, so this is usually the
		// same-unit short circuit
		qty, err := unit.Convert(ingredient.Quantity, ingredient.Unit, material.Unit)
		if err != nil {
			util.UnitConversionFallbacksTotal.Inc()
			log.Warn("Unit conversion unsupported, deducting unconverted quantity",
				zap.String("from", ingredient.Unit),
				zap.String("to", material.Unit),
				zap.Error(err))
			notes = append(notes, fmt.Sprintf("degraded conversion %s->%s for %q", ingredient.Unit, material.Unit, material.Name))
			qty = ingredient.Quantity
		}

		delta := qty.Mul(item.Quantity).Neg()
		reason := fmt.Sprintf("sale: %s", item.Name)
		if _, err := p.store.ApplyStockDelta(ctx, material.ID, delta, models.MovementTypeSale, reason, &orderID); err != nil {
			log.Error("Ledger write failed",
				zap.Int64("material_id", material.ID),
				zap.String("delta", delta.String()),
				zap.Error(err))
			notes = append(notes, fmt.Sprintf("ledger failure for %q: %v", material.Name, err))
			continue
		}

		log.Info("Stock deducted",
			zap.Int64("material_id", material.ID),
			zap.String("material", material.Name),
			zap.String("delta", delta.String()),
			zap.String("unit", material.Unit))
	}
	return strings.Join(notes, "; ")
}

// processInventoryEvent refreshes the sync timestamp of a linked raw
// material; catalog items are never auto-created from webhook traffic.
func (p *Pipeline) processInventoryEvent(ctx context.Context, tenant *models.Tenant, itemID, op string, log *zap.Logger) string {
	switch op {
	case models.WebhookOpUpdate, models.WebhookOpDelete:
		linked, err := p.store.TouchRawMaterialSync(ctx, tenant.ID, itemID)
		if err != nil {
			log.Error("Failed to touch raw material sync", zap.String("item_id", itemID), zap.Error(err))
			return fmt.Sprintf("inventory sync failed for %s: %v", itemID, err)
		}
		if !linked {
			return fmt.Sprintf("inventory %s event for unlinked item %s", op, itemID)
		}
		return ""
	default:
		return fmt.Sprintf("inventory %s event noted for %s", op, itemID)
	}
}
