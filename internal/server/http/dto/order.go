package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/fulfillment/internal/domain/model"
)

// OrderLineRequest is one requested product quantity.
type OrderLineRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0,lte=2147483647"`
}

// CreateOrderRequest describes checkout payload.
type CreateOrderRequest struct {
	UserID    int64              `json:"user_id" binding:"required,gt=0"`
	AddressID int64              `json:"address_id" binding:"required,gt=0"`
	Lines     []OrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// LineRequests converts payload lines to domain requests.
func (r CreateOrderRequest) LineRequests() []model.LineRequest {
	lines := make([]model.LineRequest, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, model.LineRequest{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return lines
}

// CreateOrderResponse acknowledges a placed order.
type CreateOrderResponse struct {
	OrderID int64           `json:"order_id"`
	Total   decimal.Decimal `json:"total"`
	Status  string          `json:"status"`
}

// OrderLineResponse is an order line with its captured price.
type OrderLineResponse struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse is the full order view.
type OrderResponse struct {
	ID        int64               `json:"id"`
	UserID    int64               `json:"user_id"`
	AddressID int64               `json:"address_id"`
	Status    string              `json:"status"`
	Total     decimal.Decimal     `json:"total"`
	Lines     []OrderLineResponse `json:"lines"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// OrderStatusResponse reports an order's status after a command.
type OrderStatusResponse struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

// NewOrderResponse maps a domain order.
func NewOrderResponse(o model.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineResponse{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal(),
		})
	}
	return OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		AddressID: o.AddressID,
		Status:    string(o.Status),
		Total:     o.Total,
		Lines:     lines,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// NewOrderListResponse maps orders preserving their order.
func NewOrderListResponse(orders []model.Order) []OrderResponse {
	resp := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, NewOrderResponse(o))
	}
	return resp
}
