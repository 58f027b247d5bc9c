package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/fulfillment/internal/domain/errors"
)

// OrderStatus describes the order lifecycle stage.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseOrderStatus resolves a status name ignoring case.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	for _, s := range orderStatuses {
		if strings.EqualFold(strings.TrimSpace(raw), string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", raw)
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	for _, known := range orderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s OrderStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// Transition is an event that moves an order between statuses.
type Transition string

const (
	TransitionPay     Transition = "pay"
	TransitionShip    Transition = "ship"
	TransitionDeliver Transition = "deliver"
	TransitionCancel  Transition = "cancel"
)

var transitions = map[OrderStatus]map[Transition]OrderStatus{
	OrderStatusPending: {
		TransitionPay:    OrderStatusProcessing,
		TransitionCancel: OrderStatusCancelled,
	},
	OrderStatusProcessing: {
		TransitionShip:   OrderStatusShipped,
		TransitionCancel: OrderStatusCancelled,
	},
	OrderStatusShipped: {
		TransitionDeliver: OrderStatusDelivered,
	},
}

// Next returns the status reached from s by t.
func (s OrderStatus) Next(t Transition) (OrderStatus, error) {
	next, ok := transitions[s][t]
	if !ok {
		return s, fmt.Errorf("%w: cannot %s order in status %s", domainErrors.ErrInvalidStatusTransition, t, s)
	}
	return next, nil
}

// CanApply reports whether t is legal from s.
func (s OrderStatus) CanApply(t Transition) bool {
	_, ok := transitions[s][t]
	return ok
}

// AdvanceTransition maps a requested shipping status to the event producing it.
// Only the shipping leg can be requested directly.
func AdvanceTransition(target OrderStatus) (Transition, error) {
	switch target {
	case OrderStatusShipped:
		return TransitionShip, nil
	case OrderStatusDelivered:
		return TransitionDeliver, nil
	default:
		return "", fmt.Errorf("%w: status %q cannot be requested directly", domainErrors.ErrInvalidStatusTransition, target)
	}
}

// Order is a customer purchase together with its lines.
type Order struct {
	ID        int64
	UserID    int64
	AddressID int64
	Status    OrderStatus
	Total     decimal.Decimal
	Lines     []OrderLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Apply moves the order along t. The order is left untouched on error.
func (o *Order) Apply(t Transition, now time.Time) error {
	next, err := o.Status.Next(t)
	if err != nil {
		return err
	}
	o.Status = next
	o.UpdatedAt = now
	return nil
}

// OrderLine is an immutable order item with the price captured at checkout.
type OrderLine struct {
	OrderID   int64
	LineID    int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal returns quantity times unit price.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderTotal sums line subtotals.
func OrderTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
