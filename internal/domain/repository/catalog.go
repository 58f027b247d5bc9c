package repository

import (
	"context"

	"github.com/polkiloo/fulfillment/internal/domain/model"
)

// CatalogRepository answers read-only lookups owned by other parts of the store.
type CatalogRepository interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
	GetAddress(ctx context.Context, addressID int64) (*model.Address, error)
	GetProduct(ctx context.Context, productID int64) (*model.Product, error)
}
