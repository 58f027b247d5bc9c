package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/fulfillment/internal/domain/model"
	"github.com/polkiloo/fulfillment/internal/domain/repository"
	"github.com/polkiloo/fulfillment/internal/usecase"
)

// DefaultClaimLease is how long a claimed outbox event stays invisible to other relays.
const DefaultClaimLease = 30 * time.Second

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// FulfillmentFacade is the single entry point used by the HTTP layer and the outbox relay.
type FulfillmentFacade struct {
	orders *usecase.FulfillmentCoordinator
	stock  *usecase.InventoryLedger
	store  repository.Factory
	health HealthChecker
	lease  time.Duration
}

func NewFulfillmentFacade(
	orders *usecase.FulfillmentCoordinator,
	stock *usecase.InventoryLedger,
	store repository.Factory,
	health HealthChecker,
) *FulfillmentFacade {
	return &FulfillmentFacade{
		orders: orders,
		stock:  stock,
		store:  store,
		health: health,
		lease:  DefaultClaimLease,
	}
}

func (f *FulfillmentFacade) CreateOrder(ctx context.Context, userID, addressID int64, lines []model.LineRequest) (*model.Order, error) {
	return f.orders.CreateOrder(ctx, usecase.CreateOrderInput{
		UserID:    userID,
		AddressID: addressID,
		Lines:     lines,
	})
}

func (f *FulfillmentFacade) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	return f.orders.GetOrder(ctx, id)
}

func (f *FulfillmentFacade) ListOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return f.orders.ListOrdersByUser(ctx, userID)
}

func (f *FulfillmentFacade) ListOrdersByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	return f.orders.ListOrdersByStatus(ctx, status)
}

func (f *FulfillmentFacade) AdvanceShippingStatus(ctx context.Context, id int64, next model.OrderStatus) (*model.Order, error) {
	return f.orders.AdvanceShippingStatus(ctx, id, next)
}

func (f *FulfillmentFacade) CancelOrder(ctx context.Context, id int64) (*model.Order, error) {
	return f.orders.CancelOrder(ctx, id)
}

func (f *FulfillmentFacade) ConfirmPayment(ctx context.Context, orderID int64, amount decimal.Decimal, method string) (*model.PaymentReceipt, error) {
	return f.orders.ConfirmPayment(ctx, orderID, amount, method)
}

func (f *FulfillmentFacade) PaymentForOrder(ctx context.Context, orderID int64) (*model.Payment, error) {
	return f.orders.PaymentForOrder(ctx, orderID)
}

func (f *FulfillmentFacade) ShipmentForOrder(ctx context.Context, orderID int64) (*model.Shipment, error) {
	return f.orders.ShipmentForOrder(ctx, orderID)
}

func (f *FulfillmentFacade) Stock(ctx context.Context, productID int64) (*model.StockRecord, error) {
	return f.stock.Get(ctx, productID)
}

func (f *FulfillmentFacade) LowStock(ctx context.Context, threshold int) ([]model.StockRecord, error) {
	return f.stock.ListLowStock(ctx, threshold)
}

func (f *FulfillmentFacade) InitializeStock(ctx context.Context, productID int64, qty int) (*model.StockRecord, error) {
	return f.stock.Initialize(ctx, productID, qty)
}

func (f *FulfillmentFacade) SetStock(ctx context.Context, productID int64, qty int) (*model.StockRecord, error) {
	return f.stock.SetAbsolute(ctx, productID, qty)
}

func (f *FulfillmentFacade) AdjustStock(ctx context.Context, productID int64, delta int) (*model.StockRecord, error) {
	return f.stock.Adjust(ctx, productID, delta)
}

func (f *FulfillmentFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}

// ClaimEvents leases up to limit unpublished outbox events for the relay.
func (f *FulfillmentFacade) ClaimEvents(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	return f.store.Outbox().ClaimBatch(ctx, limit, f.lease)
}

func (f *FulfillmentFacade) MarkEventPublished(ctx context.Context, id int64) error {
	return f.store.Outbox().MarkPublished(ctx, id)
}
