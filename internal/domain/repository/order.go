package repository

import (
	"context"
	"time"

	"github.com/polkiloo/fulfillment/internal/domain/model"
)

// OrderRepository describes persistence operations with orders and their lines.
type OrderRepository interface {
	// Create inserts the order and its lines, filling generated identifiers.
	Create(ctx context.Context, order *model.Order) error
	Get(ctx context.Context, id int64) (*model.Order, error)
	// GetForUpdate loads the order and locks its row until the transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*model.Order, error)
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus, updatedAt time.Time) error
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error)
}
