package store

import (
	"context"
	"database/sql"
	"fmt"

	"inventory-service/internal/models"
)

// InsertWebhookEvent persists an accepted delivery before any business logic
// runs. The delivery key carries a unique index; a redelivered event inserts
// nothing and the method reports inserted=false.
func (s *Store) InsertWebhookEvent(ctx context.Context, event *models.WebhookEvent) (bool, error) {
	query := `
		INSERT INTO webhook_events
			(id, tenant_id, delivery_key, event_type, object_id, raw_payload, processed)
		VALUES ($1, $2, $3, $4, $5, $6, false)
		ON CONFLICT (delivery_key) DO NOTHING
		RETURNING received_at`

	err := s.db.GetContext(ctx, &event.ReceivedAt, query,
		event.ID, event.TenantID, event.DeliveryKey, event.EventType, event.ObjectID, event.RawPayload)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert webhook event: %w", err)
	}
	return true, nil
}

// GetWebhookEvent retrieves one webhook event by id
func (s *Store) GetWebhookEvent(ctx context.Context, id string) (*models.WebhookEvent, error) {
	var event models.WebhookEvent
	err := s.db.GetContext(ctx, &event, "SELECT * FROM webhook_events WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("webhook event not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// MarkWebhookEventProcessed is the single permitted mutation of a webhook
// event: the terminal state transition, with an optional error note for
// operator inspection.
func (s *Store) MarkWebhookEventProcessed(ctx context.Context, id string, processingError string) error {
	var note sql.NullString
	if processingError != "" {
		note = sql.NullString{String: processingError, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		"UPDATE webhook_events SET processed = true, processing_error = $1, processed_at = NOW() WHERE id = $2",
		note, id)
	if err != nil {
		return fmt.Errorf("failed to mark webhook event processed: %w", err)
	}
	return nil
}

// IsWebhookEventProcessed reports whether an event already reached its
// terminal state; the worker uses it to skip redelivered queue messages.
func (s *Store) IsWebhookEventProcessed(ctx context.Context, id string) (bool, error) {
	var processed bool
	err := s.db.GetContext(ctx, &processed,
		"SELECT processed FROM webhook_events WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return false, fmt.Errorf("webhook event not found: %s", id)
	}
	return processed, err
}
