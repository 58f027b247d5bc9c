package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/fulfillment/internal/domain/model"
)

// ProcessPaymentRequest describes payment confirmation payload.
type ProcessPaymentRequest struct {
	OrderID int64           `json:"order_id" binding:"required,gt=0"`
	Amount  decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Method  string          `json:"method" binding:"required"`
}

// ProcessPaymentResponse acknowledges a confirmed payment.
type ProcessPaymentResponse struct {
	PaymentID  int64  `json:"payment_id"`
	ShipmentID int64  `json:"shipment_id"`
	OrderID    int64  `json:"order_id"`
	Status     string `json:"status"`
}

type PaymentResponse struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	CreatedAt time.Time       `json:"created_at"`
}

type ShipmentResponse struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	AddressID int64     `json:"address_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewProcessPaymentResponse(r *model.PaymentReceipt) ProcessPaymentResponse {
	return ProcessPaymentResponse{
		PaymentID:  r.Payment.ID,
		ShipmentID: r.Shipment.ID,
		OrderID:    r.Order.ID,
		Status:     string(r.Order.Status),
	}
}

func NewPaymentResponse(p *model.Payment) PaymentResponse {
	return PaymentResponse{ID: p.ID, OrderID: p.OrderID, Amount: p.Amount, Method: p.Method, CreatedAt: p.CreatedAt}
}

func NewShipmentResponse(s *model.Shipment) ShipmentResponse {
	return ShipmentResponse{
		ID:        s.ID,
		OrderID:   s.OrderID,
		AddressID: s.AddressID,
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
