package worker

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"

	"inventory-service/internal/broker"
	"inventory-service/internal/models"
	"inventory-service/internal/service"
)

// EventWorker consumes accepted webhook events and runs them through the
// deduction pipeline. Processing is idempotent, so an uncommitted message
// redelivered after a crash is safe.
type EventWorker struct {
	consumer *broker.Consumer
	pipeline *service.Pipeline
}

// NewEventWorker creates a new event worker
func NewEventWorker(consumer *broker.Consumer, pipeline *service.Pipeline) *EventWorker {
	return &EventWorker{
		consumer: consumer,
		pipeline: pipeline,
	}
}

// Start starts the worker
func (w *EventWorker) Start(ctx context.Context) error {
	log.Println("Starting webhook event worker...")

	return w.consumer.StartConsuming(ctx, func(ctx context.Context, msg kafka.Message) error {
		var event models.EventAcceptedMessage
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			// poison message: log and commit, nothing downstream can use it
			log.Printf("Failed to unmarshal accepted event: %v", err)
			return nil
		}

		return w.pipeline.ProcessEvent(ctx, &event)
	})
}

// Stop stops the worker
func (w *EventWorker) Stop() error {
	log.Println("Stopping webhook event worker...")
	return w.consumer.Close()
}
