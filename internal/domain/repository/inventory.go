package repository

import (
	"context"

	"github.com/polkiloo/fulfillment/internal/domain/model"
)

// InventoryRepository owns per-product stock counters.
type InventoryRepository interface {
	// TryReserve locks the product row and deducts qty if enough stock is on hand.
	TryReserve(ctx context.Context, productID int64, qty int) error
	// Release adds qty back, creating the record if it is missing.
	Release(ctx context.Context, productID int64, qty int) error
	SetAbsolute(ctx context.Context, productID int64, qty int) (*model.StockRecord, error)
	Increase(ctx context.Context, productID int64, qty int) (*model.StockRecord, error)
	Create(ctx context.Context, productID int64, qty int) (*model.StockRecord, error)
	Get(ctx context.Context, productID int64) (*model.StockRecord, error)
	ListLowStock(ctx context.Context, threshold int) ([]model.StockRecord, error)
}
