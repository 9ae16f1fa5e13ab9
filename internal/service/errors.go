package service

import "errors"

// Failure taxonomy surfaced to handlers. Not-found and validation
// failures map to 404/400; anything else is a persistence failure.
var (
	ErrItemNotFound  = errors.New("inventory item not found")
	ErrOrderNotFound = errors.New("order not found")
	ErrSKUExists     = errors.New("SKU already exists")

	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrEmptyOrder        = errors.New("order must contain at least one line")
	ErrInvalidTransition = errors.New("illegal order status transition")
	ErrOrderTerminal     = errors.New("order is in a terminal status")

	// ErrConflict is reserved for serialization failures reported by the
	// store; the baseline pessimistic locking does not raise it itself.
	ErrConflict = errors.New("concurrent modification conflict")
)
