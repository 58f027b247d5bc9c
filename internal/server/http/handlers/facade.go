package handlers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/fulfillment/internal/domain/model"
)

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, userID, addressID int64, lines []model.LineRequest) (*model.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*model.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error)
	ListOrdersByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error)
	AdvanceShippingStatus(ctx context.Context, orderID int64, next model.OrderStatus) (*model.Order, error)
	CancelOrder(ctx context.Context, orderID int64) (*model.Order, error)
}

// PaymentFacade provides payment operations.
type PaymentFacade interface {
	ConfirmPayment(ctx context.Context, orderID int64, amount decimal.Decimal, method string) (*model.PaymentReceipt, error)
	PaymentForOrder(ctx context.Context, orderID int64) (*model.Payment, error)
}

// ShipmentFacade provides shipment lookups.
type ShipmentFacade interface {
	ShipmentForOrder(ctx context.Context, orderID int64) (*model.Shipment, error)
}

// InventoryFacade provides stock reads and administration.
type InventoryFacade interface {
	Stock(ctx context.Context, productID int64) (*model.StockRecord, error)
	LowStock(ctx context.Context, threshold int) ([]model.StockRecord, error)
	InitializeStock(ctx context.Context, productID int64, qty int) (*model.StockRecord, error)
	SetStock(ctx context.Context, productID int64, qty int) (*model.StockRecord, error)
	AdjustStock(ctx context.Context, productID int64, delta int) (*model.StockRecord, error)
}

// HealthChecker reports whether the database answers.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// FulfillmentFacade aggregates the full set of operations used across handlers.
type FulfillmentFacade interface {
	OrderFacade
	PaymentFacade
	ShipmentFacade
	InventoryFacade
	HealthChecker
}
