package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"inventory-service/internal/clover"
	"inventory-service/internal/models"
	"inventory-service/internal/util"
)

var (
	ErrMalformedPayload = errors.New("malformed webhook payload")
	ErrUnknownTenant    = errors.New("no tenant matches merchant id")
	ErrAuthFailed       = errors.New("webhook authentication failed")
)

// IngressStore is the persistence surface the ingress needs
type IngressStore interface {
	GetTenantByMerchantID(ctx context.Context, merchantID string) (*models.Tenant, error)
	InsertWebhookEvent(ctx context.Context, event *models.WebhookEvent) (bool, error)
}

// DeliveryCache is the fast-path dedup surface; *redisclient.Client
// satisfies it
type DeliveryCache interface {
	IsDeliverySeen(ctx context.Context, deliveryKey string) (bool, error)
	MarkDeliverySeen(ctx context.Context, deliveryKey string, ttl time.Duration) error
}

// Publisher hands accepted events to the processing queue
type Publisher interface {
	PublishEventAccepted(ctx context.Context, msg *models.EventAcceptedMessage) error
}

// Ingress authenticates inbound deliveries, persists every accepted event
// before any business logic runs, and enqueues them for the worker.
type Ingress struct {
	store     IngressStore
	cache     DeliveryCache
	publisher Publisher
	pipeline  *Pipeline
	dedupTTL  time.Duration
	logger    *zap.Logger
}

// NewIngress creates the webhook ingress
func NewIngress(store IngressStore, cache DeliveryCache, publisher Publisher, pipeline *Pipeline, dedupTTL time.Duration) *Ingress {
	return &Ingress{
		store:     store,
		cache:     cache,
		publisher: publisher,
		pipeline:  pipeline,
		dedupTTL:  dedupTTL,
		logger:    util.GetLogger(),
	}
}

// HandleDelivery processes one inbound delivery. Authentication covers every
// merchant in the payload and runs before any side effect; a failure aborts
// the whole delivery. Accepted events are durably persisted before this
// method returns, so a crash after the 200 never loses the audit trail.
func (in *Ingress) HandleDelivery(ctx context.Context, payload *models.CloverWebhookPayload, rawBody []byte, signatureHeader, authCodeHeader string) error {
	ctx, span := util.StartSpan(ctx, "Ingress.HandleDelivery")
	defer span.End()

	if len(payload.Merchants) == 0 {
		return ErrMalformedPayload
	}

	tenants := make(map[string]*models.Tenant, len(payload.Merchants))
	for merchantID := range payload.Merchants {
		tenant, err := in.store.GetTenantByMerchantID(ctx, merchantID)
		if err != nil {
			return fmt.Errorf("tenant lookup failed for %s: %w", merchantID, err)
		}
		if tenant == nil {
			in.logger.Warn("Delivery for unknown merchant", zap.String("merchant_id", merchantID))
			return ErrUnknownTenant
		}

		if err := clover.VerifySignature(signatureHeader, rawBody, tenant.WebhookSecret); err != nil {
			in.logger.Warn("Signature verification failed",
				zap.String("merchant_id", merchantID))
			return ErrAuthFailed
		}

		if tenant.AuthCode.Valid && tenant.AuthCode.String != "" && authCodeHeader != tenant.AuthCode.String {
			in.logger.Warn("Auth code mismatch", zap.String("merchant_id", merchantID))
			return ErrAuthFailed
		}

		tenants[merchantID] = tenant
	}

	for merchantID, events := range payload.Merchants {
		tenant := tenants[merchantID]
		for _, ev := range events {
			if err := in.acceptEvent(ctx, tenant, merchantID, ev, rawBody); err != nil {
				return err
			}
		}
	}
	return nil
}

// acceptEvent persists one event and enqueues it. Redeliveries are dropped by
// the redis fast path or the unique delivery key. A queue failure degrades to
// inline processing; the 200 contract only depends on the durable row.
func (in *Ingress) acceptEvent(ctx context.Context, tenant *models.Tenant, merchantID string, ev models.CloverMerchantEvent, rawBody []byte) error {
	deliveryKey := fmt.Sprintf("%s:%s:%s:%d", merchantID, ev.ObjectID, ev.Type, ev.TS)

	seen, err := in.cache.IsDeliverySeen(ctx, deliveryKey)
	if err != nil {
		in.logger.Warn("Dedup cache unavailable, relying on database", zap.Error(err))
	} else if seen {
		util.WebhookEventsDuplicateTotal.Inc()
		in.logger.Info("Duplicate delivery dropped by cache", zap.String("delivery_key", deliveryKey))
		return nil
	}

	event := &models.WebhookEvent{
		ID:          uuid.New().String(),
		TenantID:    tenant.ID,
		DeliveryKey: deliveryKey,
		EventType:   ev.Type,
		ObjectID:    ev.ObjectID,
		RawPayload:  rawBody,
	}

	inserted, err := in.store.InsertWebhookEvent(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to persist webhook event: %w", err)
	}
	if !inserted {
		util.WebhookEventsDuplicateTotal.Inc()
		in.logger.Info("Duplicate delivery dropped by ledger", zap.String("delivery_key", deliveryKey))
		return nil
	}

	if err := in.cache.MarkDeliverySeen(ctx, deliveryKey, in.dedupTTL); err != nil {
		in.logger.Warn("Failed to mark delivery in cache", zap.Error(err))
	}

	util.WebhookEventsAcceptedTotal.Inc()
	in.logger.Info("Webhook event accepted",
		zap.String("event_id", event.ID),
		zap.String("object_id", ev.ObjectID),
		zap.String("event_type", ev.Type),
		zap.Int64("tenant_id", tenant.ID))

	msg := &models.EventAcceptedMessage{
		EventID:    event.ID,
		TenantID:   tenant.ID,
		MerchantID: merchantID,
		ObjectID:   ev.ObjectID,
		EventType:  ev.Type,
		TS:         ev.TS,
	}

	if err := in.publisher.PublishEventAccepted(ctx, msg); err != nil {
		in.logger.Warn("Queue publish failed, processing inline", zap.Error(err))
		if err := in.pipeline.ProcessEvent(ctx, msg); err != nil {
			// the durable row keeps the event inspectable and retriable
			in.logger.Error("Inline processing failed",
				zap.String("event_id", event.ID),
				zap.Error(err))
		}
	}
	return nil
}
