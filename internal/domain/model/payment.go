package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxPaymentMethodLength bounds the free-form payment method label.
const MaxPaymentMethodLength = 50

// AmountScale is the number of fractional digits stored for money.
const AmountScale = 2

// MaxAmount is the exclusive upper bound of a stored money value.
var MaxAmount = decimal.New(1, 10)

// Payment records a confirmed payment for an order.
type Payment struct {
	ID        int64
	OrderID   int64
	Amount    decimal.Decimal
	Method    string
	CreatedAt time.Time
}

// PaymentReceipt groups the records written by a confirmed payment.
type PaymentReceipt struct {
	Order    *Order
	Payment  *Payment
	Shipment *Shipment
}
