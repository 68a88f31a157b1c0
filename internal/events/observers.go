package events

import (
	"storefront-orders/internal/util"

	"go.uber.org/zap"
)

// EmailObserver dispatches customer-facing notifications through an email
// sender. The transport is injected; the default sender only logs.
type EmailObserver struct {
	send   func(to, message string) error
	logger *zap.Logger
}

func NewEmailObserver(send func(to, message string) error) *EmailObserver {
	o := &EmailObserver{send: send, logger: util.GetLogger()}
	if o.send == nil {
		o.send = func(to, message string) error {
			o.logger.Info("Email notification",
				zap.String("to", to),
				zap.String("message", message))
			return nil
		}
	}
	return o
}

func (o *EmailObserver) OnEvent(kind Kind, payload Payload) error {
	to, _ := payload["email"].(string)
	message, _ := payload["message"].(string)
	return o.send(to, message)
}

// WebSocketObserver pushes events to connected clients through an injected
// broadcast function.
type WebSocketObserver struct {
	broadcast func(kind Kind, payload Payload) error
	logger    *zap.Logger
}

func NewWebSocketObserver(broadcast func(kind Kind, payload Payload) error) *WebSocketObserver {
	o := &WebSocketObserver{broadcast: broadcast, logger: util.GetLogger()}
	if o.broadcast == nil {
		o.broadcast = func(kind Kind, payload Payload) error {
			o.logger.Info("Realtime notification",
				zap.String("kind", string(kind)),
				zap.Any("payload", payload))
			return nil
		}
	}
	return o
}

func (o *WebSocketObserver) OnEvent(kind Kind, payload Payload) error {
	return o.broadcast(kind, payload)
}

// LogObserver writes every event it sees to the structured log.
type LogObserver struct {
	logger *zap.Logger
}

func NewLogObserver() *LogObserver {
	return &LogObserver{logger: util.GetLogger()}
}

func (o *LogObserver) OnEvent(kind Kind, payload Payload) error {
	o.logger.Info("Event recorded",
		zap.String("kind", string(kind)),
		zap.Any("payload", payload))
	return nil
}

// InventoryAlertObserver surfaces low-stock and out-of-stock conditions to
// operators and counts them for monitoring.
type InventoryAlertObserver struct {
	threshold int
	logger    *zap.Logger
}

func NewInventoryAlertObserver(threshold int) *InventoryAlertObserver {
	return &InventoryAlertObserver{threshold: threshold, logger: util.GetLogger()}
}

func (o *InventoryAlertObserver) OnEvent(kind Kind, payload Payload) error {
	productID, _ := payload["product_id"].(int64)
	size, _ := payload["size"].(string)
	remaining, _ := payload["remaining"].(int)

	switch kind {
	case OutOfStock:
		util.StockAlertsTotal.WithLabelValues("out_of_stock").Inc()
		o.logger.Warn("Product size sold out",
			zap.Int64("product_id", productID),
			zap.String("size", size))
	case LowStock:
		util.StockAlertsTotal.WithLabelValues("low_stock").Inc()
		o.logger.Warn("Product size below threshold",
			zap.Int64("product_id", productID),
			zap.String("size", size),
			zap.Int("remaining", remaining),
			zap.Int("threshold", o.threshold))
	}
	return nil
}
