package app

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/fulfillment/internal/domain/errors"
	"github.com/polkiloo/fulfillment/internal/domain/model"
	"github.com/polkiloo/fulfillment/internal/observability"
	testhelpers "github.com/polkiloo/fulfillment/internal/test"
	"github.com/polkiloo/fulfillment/internal/usecase"
)

const (
	customer int64 = 1
	home     int64 = 11
	lamp     int64 = 500
)

func newFacade(health HealthChecker) (*FulfillmentFacade, *testhelpers.MemoryStore) {
	store := testhelpers.NewMemoryStore()
	store.AddUser(customer)
	store.AddAddress(home, customer)
	store.AddProduct(lamp, "lamp", decimal.NewFromInt(40))
	store.SetStock(lamp, 3)

	runner := usecase.NewTxRunner(store, 3)
	logger := discardLogger()
	coordinator := usecase.NewFulfillmentCoordinator(runner, store, observability.NewMetrics(), logger)
	ledger := usecase.NewInventoryLedger(runner, store, logger)
	return NewFulfillmentFacade(coordinator, ledger, store, health), store
}

func TestFulfillmentFacadeOrderLifecycle(t *testing.T) {
	facade, store := newFacade(testhelpers.HealthStub{})
	ctx := context.Background()

	order, err := facade.CreateOrder(ctx, customer, home, []model.LineRequest{{ProductID: lamp, Quantity: 2}})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if !order.Total.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected total 80, got %s", order.Total)
	}
	if store.Stock(lamp) != 1 {
		t.Fatalf("expected one lamp left, got %d", store.Stock(lamp))
	}

	receipt, err := facade.ConfirmPayment(ctx, order.ID, decimal.NewFromInt(80), "card")
	if err != nil {
		t.Fatalf("confirm payment: %v", err)
	}
	if receipt.Order.Status != model.OrderStatusProcessing {
		t.Fatalf("expected processing, got %s", receipt.Order.Status)
	}

	payment, err := facade.PaymentForOrder(ctx, order.ID)
	if err != nil || payment.ID != receipt.Payment.ID {
		t.Fatalf("unexpected payment %+v err=%v", payment, err)
	}
	shipment, err := facade.ShipmentForOrder(ctx, order.ID)
	if err != nil || shipment.Status != model.ShipmentStatusPending {
		t.Fatalf("unexpected shipment %+v err=%v", shipment, err)
	}

	shipped, err := facade.AdvanceShippingStatus(ctx, order.ID, model.OrderStatusShipped)
	if err != nil || shipped.Status != model.OrderStatusShipped {
		t.Fatalf("advance to shipped: %+v err=%v", shipped, err)
	}

	if _, err := facade.CancelOrder(ctx, order.ID); !errors.Is(err, domainErrors.ErrInvalidStatusTransition) {
		t.Fatalf("expected shipped order to refuse cancellation, got %v", err)
	}

	got, err := facade.GetOrder(ctx, order.ID)
	if err != nil || got.Status != model.OrderStatusShipped {
		t.Fatalf("unexpected order %+v err=%v", got, err)
	}

	byUser, err := facade.ListOrdersByUser(ctx, customer)
	if err != nil || len(byUser) != 1 {
		t.Fatalf("expected one order for user, got %v err=%v", byUser, err)
	}
	byStatus, err := facade.ListOrdersByStatus(ctx, model.OrderStatusPending)
	if err != nil || len(byStatus) != 0 {
		t.Fatalf("expected no pending orders, got %v err=%v", byStatus, err)
	}
}

func TestFulfillmentFacadeCancelRestoresStock(t *testing.T) {
	facade, store := newFacade(testhelpers.HealthStub{})
	ctx := context.Background()

	order, err := facade.CreateOrder(ctx, customer, home, []model.LineRequest{{ProductID: lamp, Quantity: 3}})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := facade.CreateOrder(ctx, customer, home, []model.LineRequest{{ProductID: lamp, Quantity: 1}}); !errors.Is(err, domainErrors.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	cancelled, err := facade.CancelOrder(ctx, order.ID)
	if err != nil || cancelled.Status != model.OrderStatusCancelled {
		t.Fatalf("cancel: %+v err=%v", cancelled, err)
	}
	if store.Stock(lamp) != 3 {
		t.Fatalf("expected stock restored to 3, got %d", store.Stock(lamp))
	}
}

func TestFulfillmentFacadeInventory(t *testing.T) {
	facade, _ := newFacade(testhelpers.HealthStub{})
	ctx := context.Background()

	rec, err := facade.Stock(ctx, lamp)
	if err != nil || rec.Quantity != 3 {
		t.Fatalf("unexpected stock %+v err=%v", rec, err)
	}

	if _, err := facade.InitializeStock(ctx, lamp, 1); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected existing record to be rejected, got %v", err)
	}

	rec, err = facade.SetStock(ctx, lamp, 10)
	if err != nil || rec.Quantity != 10 {
		t.Fatalf("set stock: %+v err=%v", rec, err)
	}

	rec, err = facade.AdjustStock(ctx, lamp, -4)
	if err != nil || rec.Quantity != 6 {
		t.Fatalf("adjust stock: %+v err=%v", rec, err)
	}
	if _, err := facade.AdjustStock(ctx, lamp, -7); !errors.Is(err, domainErrors.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	low, err := facade.LowStock(ctx, 6)
	if err != nil || len(low) != 1 || low[0].ProductID != lamp {
		t.Fatalf("expected lamp in low stock, got %v err=%v", low, err)
	}
	low, err = facade.LowStock(ctx, 5)
	if err != nil || len(low) != 0 {
		t.Fatalf("expected nothing below 5, got %v err=%v", low, err)
	}
}

func TestFulfillmentFacadeOutboxClaims(t *testing.T) {
	facade, store := newFacade(testhelpers.HealthStub{})
	ctx := context.Background()

	order, err := facade.CreateOrder(ctx, customer, home, []model.LineRequest{{ProductID: lamp, Quantity: 1}})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	events, err := facade.ClaimEvents(ctx, 10)
	if err != nil {
		t.Fatalf("claim events: %v", err)
	}
	if len(events) != 1 || events[0].AggregateID != order.ID || events[0].Type != model.EventOrderCreated {
		t.Fatalf("expected one created event, got %+v", events)
	}

	again, err := facade.ClaimEvents(ctx, 10)
	if err != nil || len(again) != 0 {
		t.Fatalf("expected claimed event to be leased, got %+v err=%v", again, err)
	}

	if _, err := facade.CancelOrder(ctx, order.ID); err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	held, err := facade.ClaimEvents(ctx, 10)
	if err != nil || len(held) != 0 {
		t.Fatalf("expected cancellation to wait behind the claimed creation event, got %+v err=%v", held, err)
	}

	if err := facade.MarkEventPublished(ctx, events[0].ID); err != nil {
		t.Fatalf("mark published: %v", err)
	}
	stored := store.Events()
	if len(stored) != 2 || stored[0].PublishedAt == nil {
		t.Fatalf("expected first event marked published, got %+v", stored)
	}

	next, err := facade.ClaimEvents(ctx, 10)
	if err != nil || len(next) != 1 || next[0].Type != model.EventOrderCancelled {
		t.Fatalf("expected cancellation event once its predecessor is published, got %+v err=%v", next, err)
	}
}

func TestFulfillmentFacadeHealth(t *testing.T) {
	down := errors.New("db down")
	facade, _ := newFacade(testhelpers.HealthStub{Err: down})
	if err := facade.HealthCheck(context.Background()); !errors.Is(err, down) {
		t.Fatalf("expected health error, got %v", err)
	}

	facade, _ = newFacade(testhelpers.HealthStub{})
	if err := facade.HealthCheck(context.Background()); err != nil {
		t.Fatalf("expected healthy, got %v", err)
	}
}
