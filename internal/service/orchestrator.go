package service

import (
	"context"
	"errors"
	"fmt"

	"storefront-orders/internal/events"
	"storefront-orders/internal/models"
	"storefront-orders/internal/store"
	"storefront-orders/internal/util"

	"go.uber.org/zap"
)

// Orchestrator coordinates order placement and lifecycle management across
// the relational order store and the document inventory store. The two stores
// share no transaction: placement runs as a saga whose inventory decrements
// are compensated when a later step fails.
type Orchestrator struct {
	orders    OrderStore
	guard     *StockGuard
	assembler *Assembler
	bus       *events.Bus
	logger    *zap.Logger
}

func NewOrchestrator(orders OrderStore, guard *StockGuard, assembler *Assembler, bus *events.Bus) *Orchestrator {
	return &Orchestrator{
		orders:    orders,
		guard:     guard,
		assembler: assembler,
		bus:       bus,
		logger:    util.GetLogger(),
	}
}

// PlaceOrder validates the cart, assembles the aggregate, commits the header
// and lines in one relational transaction, then decrements inventory line by
// line with conditional writes. A decrement failure restores the lines already
// taken and cancels the committed order, so no placement leaves stock and
// orders disagreeing. Returns the new order id.
func (o *Orchestrator) PlaceOrder(ctx context.Context, cart *models.Cart, user *models.User, address, phone, notes string) (int64, error) {
	ctx, span := util.StartSpan(ctx, "Orchestrator.PlaceOrder")
	defer span.End()

	feasible, err := o.guard.AllFeasible(ctx, cart)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("inventory_unreachable").Inc()
		return 0, err
	}
	if !feasible {
		util.OrdersFailedTotal.WithLabelValues("insufficient_stock").Inc()
		return 0, ErrInsufficientStock
	}

	order, err := o.assembler.FromCart(cart, user, address, phone, notes)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_cart").Inc()
		return 0, err
	}

	return o.commitOrder(ctx, order, user)
}

// PlaceExpress places a single-line order without a cart. There is no
// feasibility precheck: the conditional decrement is the gate, and a shortage
// compensates exactly like a cart placement.
func (o *Orchestrator) PlaceExpress(ctx context.Context, user *models.User, productID int64, name, size string, qty int, unitPrice float64, address, phone string) (int64, error) {
	ctx, span := util.StartSpan(ctx, "Orchestrator.PlaceExpress")
	defer span.End()

	order, err := o.assembler.Express(user.ID, productID, name, size, qty, unitPrice, address, phone)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_cart").Inc()
		return 0, err
	}

	return o.commitOrder(ctx, order, user)
}

// PlaceCustom places an order from raw line descriptors, for callers that
// build lines without a cart. Lines missing a size get the default.
func (o *Orchestrator) PlaceCustom(ctx context.Context, user *models.User, lines []LineSpec, address, phone, notes string) (int64, error) {
	ctx, span := util.StartSpan(ctx, "Orchestrator.PlaceCustom")
	defer span.End()

	order, err := o.assembler.Custom(user.ID, lines, address, phone, notes)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_cart").Inc()
		return 0, err
	}

	return o.commitOrder(ctx, order, user)
}

// commitOrder runs the shared tail of every placement: persist the header and
// lines, take stock line by line, then count and announce the new order.
func (o *Orchestrator) commitOrder(ctx context.Context, order *models.Order, user *models.User) (int64, error) {
	if err := o.orders.CreateOrder(ctx, order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return 0, fmt.Errorf("failed to persist order: %w", err)
	}

	if err := o.decrementLines(ctx, order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("decrement_failed").Inc()
		return 0, err
	}

	util.OrdersPlacedTotal.Inc()
	o.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", user.ID),
		zap.Float64("total", order.Total))

	o.bus.Notify(events.OrderCreated, events.Payload{
		"order_id":   order.ID,
		"user_id":    user.ID,
		"email":      user.Email,
		"total":      order.Total,
		"item_count": order.ItemCount(),
		"message":    fmt.Sprintf("New order #%d placed by %s", order.ID, user.Name),
	})

	return order.ID, nil
}

// decrementLines takes stock for every line. On a line failure it restores
// the lines already decremented and cancels the committed order row.
func (o *Orchestrator) decrementLines(ctx context.Context, order *models.Order) error {
	for i := range order.Lines {
		line := &order.Lines[i]
		if err := o.guard.Decrement(ctx, line.ProductID, line.Size, line.Quantity); err != nil {
			o.compensate(ctx, order, i)
			return fmt.Errorf("order %d: %w", order.ID, err)
		}
	}
	return nil
}

// compensate restores the first n lines of a partially decremented order and
// marks the order cancelled. Restore failures are logged and reported, never
// silently swallowed: the order row stays committed either way.
func (o *Orchestrator) compensate(ctx context.Context, order *models.Order, n int) {
	for i := 0; i < n; i++ {
		line := &order.Lines[i]
		if err := o.guard.Increment(ctx, line.ProductID, line.Size, line.Quantity); err != nil {
			o.logger.Error("Failed to restore stock during compensation",
				zap.Int64("order_id", order.ID),
				zap.Int64("product_id", line.ProductID),
				zap.String("size", line.Size),
				zap.Error(err))
		}
	}

	order.TransitionTo(models.StatusCancelled)
	if err := o.orders.UpdateOrderStatus(ctx, order.ID, models.StatusCancelled); err != nil {
		o.logger.Error("Failed to cancel order after decrement failure",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}

	// The cancelled row exists, so the history must show it.
	util.OrdersCancelledTotal.Inc()
	o.bus.Notify(events.OrderCancelled, events.Payload{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"message":  fmt.Sprintf("Order #%d cancelled: insufficient stock", order.ID),
	})
}

// CancelOrder cancels an order that is still PENDING, CONFIRMED or
// IN_PROCESS, restoring the stock its lines took. Returns false without any
// mutation when the order cannot be cancelled.
func (o *Orchestrator) CancelOrder(ctx context.Context, orderID int64) (bool, error) {
	ctx, span := util.StartSpan(ctx, "Orchestrator.CancelOrder")
	defer span.End()

	order, err := o.loadOrder(ctx, orderID)
	if err != nil {
		return false, err
	}

	if !order.Cancellable() {
		o.logger.Warn("Order not cancellable",
			zap.Int64("order_id", orderID),
			zap.String("status", string(order.Status)))
		return false, nil
	}

	for i := range order.Lines {
		line := &order.Lines[i]
		if err := o.guard.Increment(ctx, line.ProductID, line.Size, line.Quantity); err != nil {
			// The restore is per document; a failure here leaves the
			// remaining lines to be reconciled out of band.
			o.logger.Error("Failed to restore stock on cancellation",
				zap.Int64("order_id", orderID),
				zap.Int64("product_id", line.ProductID),
				zap.Error(err))
		}
	}

	order.TransitionTo(models.StatusCancelled)
	if err := o.orders.UpdateOrderStatus(ctx, orderID, models.StatusCancelled); err != nil {
		return false, fmt.Errorf("failed to persist cancellation of order %d: %w", orderID, err)
	}

	util.OrdersCancelledTotal.Inc()
	o.bus.Notify(events.OrderCancelled, events.Payload{
		"order_id":     orderID,
		"user_id":      order.UserID,
		"refund_total": order.Total,
		"message":      fmt.Sprintf("Order #%d cancelled, stock restored", orderID),
	})

	return true, nil
}

// UpdateStatus attempts a lifecycle transition. An illegal transition returns
// false with no mutation and no event.
func (o *Orchestrator) UpdateStatus(ctx context.Context, orderID int64, target models.OrderStatus) (bool, error) {
	ctx, span := util.StartSpan(ctx, "Orchestrator.UpdateStatus")
	defer span.End()

	order, err := o.loadOrder(ctx, orderID)
	if err != nil {
		return false, err
	}

	previous := order.Status
	if !order.TransitionTo(target) {
		util.OrderStatusUpdatesTotal.WithLabelValues(string(target), "rejected").Inc()
		o.logger.Warn("Illegal status transition rejected",
			zap.Int64("order_id", orderID),
			zap.String("from", string(previous)),
			zap.String("to", string(target)))
		return false, nil
	}

	if err := o.orders.UpdateOrderStatus(ctx, orderID, target); err != nil {
		return false, fmt.Errorf("failed to persist status of order %d: %w", orderID, err)
	}

	util.OrderStatusUpdatesTotal.WithLabelValues(string(target), "applied").Inc()
	o.bus.Notify(events.OrderUpdated, events.Payload{
		"order_id":        orderID,
		"user_id":         order.UserID,
		"previous_status": string(previous),
		"new_status":      string(target),
		"message":         fmt.Sprintf("Order #%d moved from %s to %s", orderID, previous, target),
	})

	return true, nil
}

// GetOrder retrieves an order with its lines.
func (o *Orchestrator) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return o.loadOrder(ctx, orderID)
}

// ListOrdersForUser returns a user's orders, most recent first.
func (o *Orchestrator) ListOrdersForUser(ctx context.Context, userID int64) ([]models.Order, error) {
	return o.orders.GetOrdersByUser(ctx, userID)
}

// ListOrders returns all orders, most recent first, optionally filtered by
// status ("" means all).
func (o *Orchestrator) ListOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	return o.orders.GetOrders(ctx, status)
}

// ClearCart empties the cart. Placement never clears a cart implicitly;
// callers decide when to invoke this.
func (o *Orchestrator) ClearCart(cart *models.Cart) {
	cart.Clear()
}

func (o *Orchestrator) loadOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	order, err := o.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("order %d: %w", orderID, ErrOrderNotFound)
		}
		return nil, err
	}
	return order, nil
}
