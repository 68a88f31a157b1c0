package events

import (
	"sync"
	"time"

	"storefront-orders/internal/util"

	"go.uber.org/zap"
)

// Kind identifies an event type. The enumeration is closed: observers attach
// per kind and unknown kinds are never dispatched.
type Kind string

const (
	OrderCreated     Kind = "ORDER_CREATED"
	OrderUpdated     Kind = "ORDER_UPDATED"
	OrderCancelled   Kind = "ORDER_CANCELLED"
	LowStock         Kind = "LOW_STOCK"
	OutOfStock       Kind = "OUT_OF_STOCK"
	UserRegistered   Kind = "USER_REGISTERED"
	PaymentProcessed Kind = "PAYMENT_PROCESSED"
)

// Payload carries event data as loose key/value pairs.
type Payload map[string]interface{}

// Observer is the capability an event consumer implements. Returning an error
// marks the delivery failed for that observer only; the bus logs it and keeps
// dispatching.
type Observer interface {
	OnEvent(kind Kind, payload Payload) error
}

// Record is one immutable entry in the event history.
type Record struct {
	Kind      Kind      `json:"kind"`
	Payload   Payload   `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Bus is a synchronous publish/subscribe dispatcher with a bounded,
// append-only event history. Dispatch runs on the caller's goroutine and
// blocks until every attached observer has returned.
type Bus struct {
	mu        sync.RWMutex
	observers map[Kind][]Observer
	history   []Record // ring buffer of capacity histCap
	histCap   int
	histNext  int
	histFull  bool
	logger    *zap.Logger
}

// NewBus creates a bus whose history keeps at most capacity records. A
// non-positive capacity falls back to 1000.
func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Bus{
		observers: make(map[Kind][]Observer),
		history:   make([]Record, 0, capacity),
		histCap:   capacity,
		logger:    util.GetLogger(),
	}
}

// Attach registers the observer for the kind. Attaching the same observer
// twice for the same kind is a no-op: it stays registered exactly once.
// Observers are compared by identity, so implement Observer on a pointer type.
func (b *Bus) Attach(kind Kind, obs Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.observers[kind] {
		if existing == obs {
			return
		}
	}
	b.observers[kind] = append(b.observers[kind], obs)
}

// Detach removes the observer from the kind. A no-op when it was never
// attached.
func (b *Bus) Detach(kind Kind, obs Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.observers[kind]
	for i, existing := range list {
		if existing == obs {
			b.observers[kind] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Notify records the event and then invokes every observer attached to the
// kind, in registration order. Observer errors and panics are logged and
// confined: they never abort remaining observers or surface to the caller.
func (b *Bus) Notify(kind Kind, payload Payload) {
	record := Record{Kind: kind, Payload: payload, Timestamp: time.Now()}
	util.EventsDispatchedTotal.WithLabelValues(string(kind)).Inc()

	b.mu.Lock()
	b.append(record)
	observers := make([]Observer, len(b.observers[kind]))
	copy(observers, b.observers[kind])
	b.mu.Unlock()

	for _, obs := range observers {
		b.dispatch(obs, kind, payload)
	}
}

func (b *Bus) dispatch(obs Observer, kind Kind, payload Payload) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Observer panicked",
				zap.String("kind", string(kind)),
				zap.Any("panic", r))
		}
	}()

	if err := obs.OnEvent(kind, payload); err != nil {
		b.logger.Error("Observer failed",
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
}

// append writes into the ring buffer, overwriting the oldest record once the
// capacity is reached. Caller holds the lock.
func (b *Bus) append(record Record) {
	if len(b.history) < b.histCap {
		b.history = append(b.history, record)
		b.histNext = len(b.history) % b.histCap
		b.histFull = len(b.history) == b.histCap
		return
	}
	b.history[b.histNext] = record
	b.histNext = (b.histNext + 1) % b.histCap
	b.histFull = true
}

// History returns up to limit most-recent records, oldest first, optionally
// filtered by kind. Kind "" means no filter; limit <= 0 means everything
// retained.
func (b *Bus) History(kind Kind, limit int) []Record {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ordered := make([]Record, 0, len(b.history))
	if b.histFull {
		ordered = append(ordered, b.history[b.histNext:]...)
		ordered = append(ordered, b.history[:b.histNext]...)
	} else {
		ordered = append(ordered, b.history...)
	}

	if kind != "" {
		filtered := ordered[:0]
		for _, r := range ordered {
			if r.Kind == kind {
				filtered = append(filtered, r)
			}
		}
		ordered = filtered
	}

	if limit > 0 && len(ordered) > limit {
		ordered = ordered[len(ordered)-limit:]
	}
	return ordered
}

// ClearHistory drops all retained records.
func (b *Bus) ClearHistory() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = b.history[:0]
	b.histNext = 0
	b.histFull = false
}
