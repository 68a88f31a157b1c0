package service

import (
	"context"
	"testing"

	"storefront-orders/internal/events"
	"storefront-orders/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guardFixture(t *testing.T) (*StockGuard, *fakeInventory, *events.Bus) {
	t.Helper()
	inv := newFakeInventory()
	bus := events.NewBus(100)
	return NewStockGuard(inv, bus, 5), inv, bus
}

func TestValidatePerLineFeasibility(t *testing.T) {
	guard, inv, _ := guardFixture(t)
	ctx := context.Background()

	inv.docs[1] = map[string]int{"M": 5, "L": 1}

	cart := models.NewCart(7)
	cart.AddItem(&models.Product{ID: 1, Price: 20.0}, "M", 3)
	cart.AddItem(&models.Product{ID: 1, Price: 20.0}, "L", 2)
	cart.AddItem(&models.Product{ID: 1, Price: 20.0}, "XL", 1) // absent size

	results, err := guard.Validate(ctx, cart)
	require.NoError(t, err)

	assert.True(t, results[LineKey{ProductID: 1, Size: "M"}])
	assert.False(t, results[LineKey{ProductID: 1, Size: "L"}])
	assert.False(t, results[LineKey{ProductID: 1, Size: "XL"}], "absent size counts as zero")
}

func TestAllFeasible(t *testing.T) {
	guard, inv, _ := guardFixture(t)
	ctx := context.Background()

	inv.docs[1] = map[string]int{"M": 5}

	cart := models.NewCart(7)
	cart.AddItem(&models.Product{ID: 1, Price: 20.0}, "M", 3)

	ok, err := guard.AllFeasible(ctx, cart)
	require.NoError(t, err)
	assert.True(t, ok)

	cart.AddItem(&models.Product{ID: 1, Price: 20.0}, "M", 3) // merges to 6 > 5
	ok, err = guard.AllFeasible(ctx, cart)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateDoesNotMutateInventory(t *testing.T) {
	guard, inv, _ := guardFixture(t)
	ctx := context.Background()

	inv.docs[1] = map[string]int{"M": 5}
	before := inv.snapshot()

	cart := models.NewCart(7)
	cart.AddItem(&models.Product{ID: 1, Price: 20.0}, "M", 3)
	_, err := guard.Validate(ctx, cart)
	require.NoError(t, err)

	assert.Equal(t, before, inv.snapshot())
}

func TestDecrementConditional(t *testing.T) {
	guard, inv, _ := guardFixture(t)
	ctx := context.Background()

	inv.docs[1] = map[string]int{"M": 2}

	err := guard.Decrement(ctx, 1, "M", 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 2, inv.docs[1]["M"], "failed decrement must not mutate")

	require.NoError(t, guard.Decrement(ctx, 1, "M", 2))
	assert.Equal(t, 0, inv.docs[1]["M"])
}

func TestDecrementEmitsStockAlerts(t *testing.T) {
	guard, inv, bus := guardFixture(t)
	ctx := context.Background()

	inv.docs[1] = map[string]int{"M": 10, "L": 3}

	// 10 -> 3 crosses the threshold of 5.
	require.NoError(t, guard.Decrement(ctx, 1, "M", 7))
	low := bus.History(events.LowStock, 0)
	require.Len(t, low, 1)
	assert.Equal(t, int64(1), low[0].Payload["product_id"])
	assert.Equal(t, "M", low[0].Payload["size"])
	assert.Equal(t, 3, low[0].Payload["remaining"])

	// 3 -> 0 is an out-of-stock, not another low-stock.
	require.NoError(t, guard.Decrement(ctx, 1, "L", 3))
	out := bus.History(events.OutOfStock, 0)
	require.Len(t, out, 1)
	assert.Equal(t, "L", out[0].Payload["size"])
	assert.Len(t, bus.History(events.LowStock, 0), 1)
}

func TestIncrementRestoresStock(t *testing.T) {
	guard, inv, _ := guardFixture(t)
	ctx := context.Background()

	inv.docs[1] = map[string]int{"M": 2}

	require.NoError(t, guard.Increment(ctx, 1, "M", 4))
	assert.Equal(t, 6, inv.docs[1]["M"])

	// Restoring a size the document never had creates it.
	require.NoError(t, guard.Increment(ctx, 1, "XXL", 1))
	assert.Equal(t, 1, inv.docs[1]["XXL"])
}
