package dto

import (
	"time"

	"github.com/polkiloo/fulfillment/internal/domain/model"
)

// InitializeStockRequest creates the stock record of a product.
type InitializeStockRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  *int  `json:"quantity" binding:"required,gte=0,lte=2147483647"`
}

// UpdateStockRequest carries exactly one of an absolute quantity or a signed delta.
type UpdateStockRequest struct {
	Quantity *int `json:"quantity" binding:"omitempty,gte=0,lte=2147483647"`
	Delta    *int `json:"delta" binding:"omitempty,gte=-2147483647,lte=2147483647"`
}

// StockResponse is the on-hand quantity of one product.
type StockResponse struct {
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewStockResponse(r model.StockRecord) StockResponse {
	return StockResponse{ProductID: r.ProductID, Quantity: r.Quantity, UpdatedAt: r.UpdatedAt}
}

func NewStockListResponse(records []model.StockRecord) []StockResponse {
	resp := make([]StockResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, NewStockResponse(r))
	}
	return resp
}
