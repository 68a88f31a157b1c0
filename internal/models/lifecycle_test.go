package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []OrderStatus{
	StatusPending, StatusConfirmed, StatusInProcess,
	StatusShipped, StatusDelivered, StatusCancelled,
}

// The expected allowed-transition table, written out in full so every
// (from, to) pair is asserted, allowed and rejected alike.
var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusInProcess: true, StatusCancelled: true},
	StatusInProcess: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:   {StatusDelivered: true},
	StatusDelivered: {},
	StatusCancelled: {},
}

func TestTransitionTableExhaustive(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			order := &Order{Status: from}
			want := allowedTransitions[from][to]

			got := order.TransitionTo(to)

			assert.Equal(t, want, got, "transition %s -> %s", from, to)
			if want {
				assert.Equal(t, to, order.Status)
			} else {
				assert.Equal(t, from, order.Status, "rejected transition must not mutate status")
			}
		}
	}
}

func TestCancellable(t *testing.T) {
	cancellable := map[OrderStatus]bool{
		StatusPending:   true,
		StatusConfirmed: true,
		StatusInProcess: true,
	}
	for _, status := range allStatuses {
		order := &Order{Status: status}
		assert.Equal(t, cancellable[status], order.Cancellable(), "status %s", status)
	}
}

func TestCompleted(t *testing.T) {
	terminal := map[OrderStatus]bool{
		StatusDelivered: true,
		StatusCancelled: true,
	}
	for _, status := range allStatuses {
		order := &Order{Status: status}
		assert.Equal(t, terminal[status], order.Completed(), "status %s", status)
	}
}

func TestStatusValid(t *testing.T) {
	for _, status := range allStatuses {
		assert.True(t, status.Valid())
	}
	assert.False(t, OrderStatus("REFUNDED").Valid())
	assert.False(t, OrderStatus("").Valid())
}
