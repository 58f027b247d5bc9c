package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists           = errors.New("already exists")
	ErrNotFound                = errors.New("not found")
	ErrInvalidReference        = errors.New("invalid reference")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrInsufficientPayment     = errors.New("insufficient payment")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrOrderNotFound           = errors.New("order not found")
	ErrTransactionConflict     = errors.New("transaction conflict")
	ErrInvalidQuantity         = errors.New("invalid quantity")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrInvalidPaymentMethod    = errors.New("invalid payment method")
	ErrEmptyOrder              = errors.New("order has no lines")
	ErrIdempotencyConflict     = errors.New("request with the same idempotency key is in progress")
)

// StockError reports which product could not be reserved.
type StockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}

// Reference kinds used by ReferenceError.
const (
	ReferenceUser    = "user"
	ReferenceAddress = "address"
	ReferenceProduct = "product"
)

// ReferenceError names the unknown collaborator entity.
type ReferenceError struct {
	Kind string
	ID   int64
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("invalid reference: %s %d", e.Kind, e.ID)
}

func (e *ReferenceError) Unwrap() error {
	return ErrInvalidReference
}

// IsRetryable reports whether err may succeed when the whole operation is repeated.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransactionConflict)
}
