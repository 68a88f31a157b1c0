package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"storefront-orders/internal/broker"
	"storefront-orders/internal/events"
	"storefront-orders/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// NotificationWorker consumes order events from Kafka and sends customer
// notifications away from the request path. The sender is injected; the
// default implementation logs.
type NotificationWorker struct {
	consumer *broker.Consumer
	send     func(to, message string) error
	logger   *zap.Logger
}

func NewNotificationWorker(consumer *broker.Consumer, send func(to, message string) error) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		send:     send,
		logger:   util.GetLogger(),
	}
	if w.send == nil {
		w.send = func(to, message string) error {
			w.logger.Info("Email notification",
				zap.String("to", to),
				zap.String("message", message))
			return nil
		}
	}
	return w
}

// Start consumes until the context is cancelled.
func (w *NotificationWorker) Start(ctx context.Context) error {
	log.Println("Starting notification worker...")
	return w.consumer.StartConsuming(ctx, w.handleMessage)
}

// Stop closes the consumer.
func (w *NotificationWorker) Stop() error {
	log.Println("Stopping notification worker...")
	return w.consumer.Close()
}

func (w *NotificationWorker) handleMessage(ctx context.Context, msg kafka.Message) error {
	var envelope broker.Envelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal event envelope: %w", err)
	}

	switch events.Kind(envelope.Kind) {
	case events.OrderCreated, events.OrderUpdated, events.OrderCancelled:
		to, _ := envelope.Payload["email"].(string)
		message, _ := envelope.Payload["message"].(string)
		if message == "" {
			w.logger.Warn("Order event without message, skipping",
				zap.String("kind", envelope.Kind),
				zap.String("event_id", envelope.EventID))
			return nil
		}
		return w.send(to, message)

	default:
		// Stock alerts and the rest are operator-facing; nothing to mail.
		return nil
	}
}
