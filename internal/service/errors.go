package service

import "errors"

var (
	// ErrInsufficientStock rejects a placement whose cart exceeds available
	// inventory. Raised before any mutation, or by a conditional decrement
	// that found the stock gone at commit time.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrEmptyCart rejects a placement with no lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrOrderNotFound reports an unknown order id.
	ErrOrderNotFound = errors.New("order not found")

	// ErrMissingContact rejects an assembly without a shipping address or
	// contact phone where no default applies.
	ErrMissingContact = errors.New("shipping address and contact phone are required")

	// ErrInvalidQuantity rejects a line whose quantity is not at least one.
	// A non-positive quantity would turn the conditional decrement into an
	// increment, so it is refused before any store I/O.
	ErrInvalidQuantity = errors.New("line quantity must be at least 1")
)
