package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/fulfillment/internal/domain/errors"
	"github.com/polkiloo/fulfillment/internal/domain/model"
)

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	CreateFn       func(context.Context, int64, int64, []model.LineRequest) (*model.Order, error)
	GetFn          func(context.Context, int64) (*model.Order, error)
	ByUserFn       func(context.Context, int64) ([]model.Order, error)
	ByStatusFn     func(context.Context, model.OrderStatus) ([]model.Order, error)
	AdvanceFn      func(context.Context, int64, model.OrderStatus) (*model.Order, error)
	CancelFn       func(context.Context, int64) (*model.Order, error)
	createdCounter int32
}

// CreateOrder delegates to provided function or prices every line at 1.
func (s *OrderFacadeStub) CreateOrder(ctx context.Context, userID, addressID int64, lines []model.LineRequest) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, userID, addressID, lines)
	}
	id := atomic.AddInt32(&s.createdCounter, 1)
	order := &model.Order{ID: int64(id), UserID: userID, AddressID: addressID, Status: model.OrderStatusPending}
	for _, l := range lines {
		order.Lines = append(order.Lines, model.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: decimal.NewFromInt(1)})
	}
	order.Total = model.OrderTotal(order.Lines)
	return order, nil
}

// Created reports how many orders the default CreateOrder produced.
func (s *OrderFacadeStub) Created() int {
	return int(atomic.LoadInt32(&s.createdCounter))
}

// GetOrder returns configured order or a Pending one with the requested id.
func (s *OrderFacadeStub) GetOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, orderID)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusPending}, nil
}

// ListOrdersByUser returns configured orders or an empty list.
func (s *OrderFacadeStub) ListOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.ByUserFn != nil {
		return s.ByUserFn(ctx, userID)
	}
	return []model.Order{}, nil
}

// ListOrdersByStatus returns configured orders or an empty list.
func (s *OrderFacadeStub) ListOrdersByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	if s.ByStatusFn != nil {
		return s.ByStatusFn(ctx, status)
	}
	return []model.Order{}, nil
}

// AdvanceShippingStatus returns the order moved to next.
func (s *OrderFacadeStub) AdvanceShippingStatus(ctx context.Context, orderID int64, next model.OrderStatus) (*model.Order, error) {
	if s.AdvanceFn != nil {
		return s.AdvanceFn(ctx, orderID, next)
	}
	return &model.Order{ID: orderID, Status: next}, nil
}

// CancelOrder returns a Cancelled order.
func (s *OrderFacadeStub) CancelOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, orderID)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusCancelled}, nil
}

// PaymentFacadeStub simulates payment and shipment operations.
type PaymentFacadeStub struct {
	ConfirmFn  func(context.Context, int64, decimal.Decimal, string) (*model.PaymentReceipt, error)
	PaymentFn  func(context.Context, int64) (*model.Payment, error)
	ShipmentFn func(context.Context, int64) (*model.Shipment, error)
}

// ConfirmPayment returns a receipt for a Processing order.
func (s PaymentFacadeStub) ConfirmPayment(ctx context.Context, orderID int64, amount decimal.Decimal, method string) (*model.PaymentReceipt, error) {
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, orderID, amount, method)
	}
	return &model.PaymentReceipt{
		Order:    &model.Order{ID: orderID, Status: model.OrderStatusProcessing, Total: amount},
		Payment:  &model.Payment{ID: 1, OrderID: orderID, Amount: amount, Method: method},
		Shipment: &model.Shipment{ID: 1, OrderID: orderID, Status: model.ShipmentStatusPending},
	}, nil
}

// PaymentForOrder returns configured payment or not found.
func (s PaymentFacadeStub) PaymentForOrder(ctx context.Context, orderID int64) (*model.Payment, error) {
	if s.PaymentFn != nil {
		return s.PaymentFn(ctx, orderID)
	}
	return nil, domainErrors.ErrNotFound
}

// ShipmentForOrder returns configured shipment or not found.
func (s PaymentFacadeStub) ShipmentForOrder(ctx context.Context, orderID int64) (*model.Shipment, error) {
	if s.ShipmentFn != nil {
		return s.ShipmentFn(ctx, orderID)
	}
	return nil, domainErrors.ErrNotFound
}

// InventoryFacadeStub simulates stock administration.
type InventoryFacadeStub struct {
	StockFn    func(context.Context, int64) (*model.StockRecord, error)
	LowStockFn func(context.Context, int) ([]model.StockRecord, error)
	InitFn     func(context.Context, int64, int) (*model.StockRecord, error)
	SetFn      func(context.Context, int64, int) (*model.StockRecord, error)
	AdjustFn   func(context.Context, int64, int) (*model.StockRecord, error)
}

// Stock returns configured record or ten units of productID.
func (s InventoryFacadeStub) Stock(ctx context.Context, productID int64) (*model.StockRecord, error) {
	if s.StockFn != nil {
		return s.StockFn(ctx, productID)
	}
	return &model.StockRecord{ProductID: productID, Quantity: 10}, nil
}

// LowStock returns configured records or an empty list.
func (s InventoryFacadeStub) LowStock(ctx context.Context, threshold int) ([]model.StockRecord, error) {
	if s.LowStockFn != nil {
		return s.LowStockFn(ctx, threshold)
	}
	return []model.StockRecord{}, nil
}

// InitializeStock echoes the requested record.
func (s InventoryFacadeStub) InitializeStock(ctx context.Context, productID int64, qty int) (*model.StockRecord, error) {
	if s.InitFn != nil {
		return s.InitFn(ctx, productID, qty)
	}
	return &model.StockRecord{ProductID: productID, Quantity: qty}, nil
}

// SetStock echoes the requested record.
func (s InventoryFacadeStub) SetStock(ctx context.Context, productID int64, qty int) (*model.StockRecord, error) {
	if s.SetFn != nil {
		return s.SetFn(ctx, productID, qty)
	}
	return &model.StockRecord{ProductID: productID, Quantity: qty}, nil
}

// AdjustStock applies delta to ten units.
func (s InventoryFacadeStub) AdjustStock(ctx context.Context, productID int64, delta int) (*model.StockRecord, error) {
	if s.AdjustFn != nil {
		return s.AdjustFn(ctx, productID, delta)
	}
	return &model.StockRecord{ProductID: productID, Quantity: 10 + delta}, nil
}

// HealthStub reports configured database health.
type HealthStub struct {
	Err error
}

// HealthCheck returns the configured error.
func (s HealthStub) HealthCheck(context.Context) error {
	return s.Err
}

// FulfillmentFacadeStub aggregates facade dependencies for HTTP layer tests.
type FulfillmentFacadeStub struct {
	*OrderFacadeStub
	PaymentFacadeStub
	InventoryFacadeStub
	HealthStub
}

// NewFulfillmentFacadeStub returns a stub with default behaviour everywhere.
func NewFulfillmentFacadeStub() FulfillmentFacadeStub {
	return FulfillmentFacadeStub{OrderFacadeStub: &OrderFacadeStub{}}
}

// OutboxSourceStub feeds the relay with queued batches and records acknowledgements.
type OutboxSourceStub struct {
	Batches [][]model.OutboxEvent
	ClaimFn func(context.Context, int) ([]model.OutboxEvent, error)
	MarkFn  func(context.Context, int64) error

	mu         sync.Mutex
	published  []int64
	claimCalls int32
}

// ClaimEvents returns batches in order, then nothing.
func (s *OutboxSourceStub) ClaimEvents(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	if s.ClaimFn != nil {
		return s.ClaimFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.claimCalls, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	time.Sleep(10 * time.Millisecond)
	return nil, nil
}

// MarkEventPublished records acknowledged event ids.
func (s *OutboxSourceStub) MarkEventPublished(ctx context.Context, id int64) error {
	if s.MarkFn != nil {
		if err := s.MarkFn(ctx, id); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, id)
	return nil
}

// PublishedIDs returns acknowledged ids in acknowledgement order.
func (s *OutboxSourceStub) PublishedIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.published...)
}

// PublisherStub records published events.
type PublisherStub struct {
	PublishFn func(context.Context, model.OutboxEvent) error

	mu     sync.Mutex
	events []model.OutboxEvent
}

// Publish records event unless PublishFn fails.
func (s *PublisherStub) Publish(ctx context.Context, event model.OutboxEvent) error {
	if s.PublishFn != nil {
		if err := s.PublishFn(ctx, event); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns recorded events in publish order.
func (s *PublisherStub) Events() []model.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.OutboxEvent(nil), s.events...)
}

// ObserverStub counts publish outcomes.
type ObserverStub struct {
	published atomic.Int64
	failed    atomic.Int64
}

// EventPublished records one outcome.
func (s *ObserverStub) EventPublished(ok bool) {
	if ok {
		s.published.Add(1)
		return
	}
	s.failed.Add(1)
}

// Published returns the number of successful publishes.
func (s *ObserverStub) Published() int64 { return s.published.Load() }

// Failed returns the number of failed publishes.
func (s *ObserverStub) Failed() int64 { return s.failed.Load() }
