package models

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusInProcess OrderStatus = "IN_PROCESS"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// validTransitions is the full lifecycle table. DELIVERED and CANCELLED are
// terminal: no outgoing transitions.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusInProcess, StatusCancelled},
	StatusInProcess: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

// Valid reports whether s is a known lifecycle state.
func (s OrderStatus) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether the table allows moving from s to target.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo mutates the order status only when the transition table allows
// it. An illegal target leaves the status untouched and returns false; this is
// a rejection, not an error.
func (o *Order) TransitionTo(target OrderStatus) bool {
	if !o.Status.CanTransitionTo(target) {
		return false
	}
	o.Status = target
	return true
}

// Cancellable reports whether the order is still in a state that permits
// cancellation.
func (o *Order) Cancellable() bool {
	switch o.Status {
	case StatusPending, StatusConfirmed, StatusInProcess:
		return true
	}
	return false
}

// Completed reports whether the order reached a terminal state.
func (o *Order) Completed() bool {
	return o.Status == StatusDelivered || o.Status == StatusCancelled
}
