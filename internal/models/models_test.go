package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderLineSubtotal(t *testing.T) {
	line := OrderLine{Quantity: 3, UnitPrice: 20.0}
	assert.InDelta(t, 60.0, line.Subtotal(), 1e-9)
}

func TestOrderAddLineRecalculatesTotal(t *testing.T) {
	order := &Order{Status: StatusPending}

	order.AddLine(OrderLine{ProductID: 1, Quantity: 2, UnitPrice: 50.0})
	assert.InDelta(t, 100.0, order.Total, 1e-9)

	order.AddLine(OrderLine{ProductID: 2, Quantity: 1, UnitPrice: 30.0})
	assert.InDelta(t, 130.0, order.Total, 1e-9)
	assert.Equal(t, 3, order.ItemCount())
}

func TestInventoryAvailableTreatsAbsentSizeAsZero(t *testing.T) {
	inv := &Inventory{ProductID: 1, Counts: map[string]int{"M": 5}}

	assert.Equal(t, 5, inv.Available("M"))
	assert.Equal(t, 0, inv.Available("XXL"))
	assert.True(t, inv.HasStock("M", 5))
	assert.False(t, inv.HasStock("M", 6))
	assert.False(t, inv.HasStock("XXL", 1))
	assert.Equal(t, 5, inv.TotalStock())
}
