package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-orders/internal/events"
	"storefront-orders/internal/models"
	"storefront-orders/internal/redisclient"
	"storefront-orders/internal/util"

	"go.uber.org/zap"
)

// LineKey identifies one feasibility result: a (product, size) pair.
type LineKey struct {
	ProductID int64
	Size      string
}

// StockGuard checks cart feasibility against the inventory documents and
// performs the conditional decrement / restore writes. Validation is read-only
// and non-reserving; the decrement re-checks the count atomically, so a
// validation snapshot going stale cannot oversell.
type StockGuard struct {
	inv       InventoryStore
	bus       *events.Bus
	threshold int
	logger    *zap.Logger
}

func NewStockGuard(inv InventoryStore, bus *events.Bus, lowStockThreshold int) *StockGuard {
	return &StockGuard{
		inv:       inv,
		bus:       bus,
		threshold: lowStockThreshold,
		logger:    util.GetLogger(),
	}
}

// Validate returns per-line feasibility for the cart: count ≥ requested
// quantity, with an absent size treated as zero. No lock or hold is taken.
func (g *StockGuard) Validate(ctx context.Context, cart *models.Cart) (map[LineKey]bool, error) {
	ctx, span := util.StartSpan(ctx, "StockGuard.Validate")
	defer span.End()

	counts := make(map[int64]map[string]int)
	results := make(map[LineKey]bool, len(cart.Items))

	for i := range cart.Items {
		item := &cart.Items[i]
		doc, ok := counts[item.Product.ID]
		if !ok {
			var err error
			doc, err = g.inv.GetInventory(ctx, item.Product.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to read inventory for product %d: %w", item.Product.ID, err)
			}
			counts[item.Product.ID] = doc
		}

		key := LineKey{ProductID: item.Product.ID, Size: item.Size}
		results[key] = doc[item.Size] >= item.Quantity
	}
	return results, nil
}

// AllFeasible is the conjunction of Validate over the cart.
func (g *StockGuard) AllFeasible(ctx context.Context, cart *models.Cart) (bool, error) {
	results, err := g.Validate(ctx, cart)
	if err != nil {
		return false, err
	}
	for _, feasible := range results {
		if !feasible {
			return false, nil
		}
	}
	return true, nil
}

// Decrement atomically reduces the size count by qty, failing with
// ErrInsufficientStock and no mutation when the count does not cover it.
// Crossing the low-stock threshold or hitting zero emits an alert event.
func (g *StockGuard) Decrement(ctx context.Context, productID int64, size string, qty int) error {
	ctx, span := util.StartSpan(ctx, "StockGuard.Decrement")
	defer span.End()

	start := time.Now()
	defer func() {
		util.StockDecrementLatency.Observe(time.Since(start).Seconds())
	}()

	remaining, err := g.inv.DecrementStock(ctx, productID, size, qty)
	if err != nil {
		if errors.Is(err, redisclient.ErrInsufficientStock) {
			util.StockDecrementsFailed.WithLabelValues("insufficient_stock").Inc()
			return fmt.Errorf("product %d size %s: %w", productID, size, ErrInsufficientStock)
		}
		util.StockDecrementsFailed.WithLabelValues("store_error").Inc()
		return fmt.Errorf("failed to decrement stock for product %d size %s: %w", productID, size, err)
	}

	switch {
	case remaining == 0:
		g.bus.Notify(events.OutOfStock, events.Payload{
			"product_id": productID,
			"size":       size,
			"remaining":  remaining,
		})
	case remaining < g.threshold:
		g.bus.Notify(events.LowStock, events.Payload{
			"product_id": productID,
			"size":       size,
			"remaining":  remaining,
		})
	}
	return nil
}

// Increment restores qty units of the size, e.g. on cancellation or when
// compensating a failed placement.
func (g *StockGuard) Increment(ctx context.Context, productID int64, size string, qty int) error {
	ctx, span := util.StartSpan(ctx, "StockGuard.Increment")
	defer span.End()

	if err := g.inv.IncrementStock(ctx, productID, size, qty); err != nil {
		return fmt.Errorf("failed to restore stock for product %d size %s: %w", productID, size, err)
	}
	util.StockRestoredTotal.Inc()
	return nil
}
