package usecase

import (
	"context"

	"github.com/polkiloo/fulfillment/internal/domain/model"
)

// GetOrder returns the order with its lines.
func (c *FulfillmentCoordinator) GetOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	return c.store.Orders().Get(ctx, orderID)
}

// ListOrdersByUser returns a user's orders, newest first.
func (c *FulfillmentCoordinator) ListOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	orders, err := c.store.Orders().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// ListOrdersByStatus returns orders currently in status, newest first.
func (c *FulfillmentCoordinator) ListOrdersByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	orders, err := c.store.Orders().ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

func (c *FulfillmentCoordinator) PaymentForOrder(ctx context.Context, orderID int64) (*model.Payment, error) {
	return c.store.Payments().GetByOrder(ctx, orderID)
}

func (c *FulfillmentCoordinator) ShipmentForOrder(ctx context.Context, orderID int64) (*model.Shipment, error) {
	return c.store.Shipments().GetByOrder(ctx, orderID)
}
