package broker

import (
	"context"

	"inventory-service/internal/models"
)

// EventPublisher publishes accepted webhook events to the processing topic
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishEventAccepted hands a persisted webhook event to the worker. Keyed
// by object id so events for the same entity stay ordered per partition.
func (ep *EventPublisher) PublishEventAccepted(ctx context.Context, msg *models.EventAcceptedMessage) error {
	return ep.producer.PublishMessage(ctx, msg.ObjectID, msg)
}
