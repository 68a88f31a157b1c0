package broker

import (
	"context"
	"fmt"
	"time"

	"storefront-orders/internal/events"

	"github.com/google/uuid"
)

// Envelope is the wire form of a bus event on the order-events topic.
type Envelope struct {
	EventID   string         `json:"event_id"`
	Kind      string         `json:"kind"`
	Payload   events.Payload `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

// EventPublisher serializes bus events into Kafka messages.
type EventPublisher struct {
	producer *Producer
}

func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// Publish writes the event to the order-events topic, keyed by order id when
// present so one order's events stay in partition order.
func (ep *EventPublisher) Publish(ctx context.Context, kind events.Kind, payload events.Payload) error {
	envelope := Envelope{
		EventID:   uuid.New().String(),
		Kind:      string(kind),
		Payload:   payload,
		Timestamp: time.Now(),
	}

	key := string(kind)
	if orderID, ok := payload["order_id"]; ok {
		key = fmt.Sprintf("order-%v", orderID)
	}

	return ep.producer.PublishEvent(ctx, key, envelope)
}

// RelayObserver bridges the in-process event bus to Kafka: attach it to the
// order event kinds and every dispatched event is republished for external
// consumers. Publish runs with its own timeout so a slow broker does not hang
// the triggering operation indefinitely.
type RelayObserver struct {
	publisher *EventPublisher
	timeout   time.Duration
}

func NewRelayObserver(publisher *EventPublisher) *RelayObserver {
	return &RelayObserver{publisher: publisher, timeout: 10 * time.Second}
}

func (r *RelayObserver) OnEvent(kind events.Kind, payload events.Payload) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.publisher.Publish(ctx, kind, payload)
}
