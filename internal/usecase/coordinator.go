package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/polkiloo/fulfillment/internal/domain/errors"
	"github.com/polkiloo/fulfillment/internal/domain/model"
	"github.com/polkiloo/fulfillment/internal/domain/repository"
	"github.com/polkiloo/fulfillment/internal/observability"
)

var tracer = otel.Tracer("github.com/polkiloo/fulfillment/internal/usecase")

// CreateOrderInput is a checkout request.
type CreateOrderInput struct {
	UserID    int64
	AddressID int64
	Lines     []model.LineRequest
}

// FulfillmentCoordinator runs the order lifecycle. Each operation is a single
// transaction spanning stock, orders, payments, shipments and the outbox.
type FulfillmentCoordinator struct {
	tx      *TxRunner
	store   repository.Factory
	metrics *observability.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewFulfillmentCoordinator constructs FulfillmentCoordinator.
func NewFulfillmentCoordinator(
	tx *TxRunner,
	store repository.Factory,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *FulfillmentCoordinator {
	return &FulfillmentCoordinator{
		tx:      tx,
		store:   store,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder reserves stock for every line and records a Pending order.
// Nothing is written unless every line can be reserved.
func (c *FulfillmentCoordinator) CreateOrder(ctx context.Context, in CreateOrderInput) (_ *model.Order, err error) {
	ctx, span := tracer.Start(ctx, "FulfillmentCoordinator.CreateOrder", trace.WithAttributes(
		attribute.Int64("user.id", in.UserID),
		attribute.Int("order.lines", len(in.Lines)),
	))
	defer func() { endSpan(span, err) }()

	lines, err := NormalizeLines(in.Lines)
	if err != nil {
		return nil, err
	}

	var order *model.Order
	err = c.tx.Run(ctx, func(tx repository.Factory) error {
		if err := checkOwner(ctx, tx.Catalog(), in.UserID, in.AddressID); err != nil {
			return err
		}

		now := c.now()
		order = &model.Order{
			UserID:    in.UserID,
			AddressID: in.AddressID,
			Status:    model.OrderStatusPending,
			CreatedAt: now,
			Lines:     make([]model.OrderLine, 0, len(lines)),
		}

		for _, l := range lines {
			product, err := tx.Catalog().GetProduct(ctx, l.ProductID)
			if err != nil {
				if errors.Is(err, domainErrors.ErrNotFound) {
					return &domainErrors.ReferenceError{Kind: domainErrors.ReferenceProduct, ID: l.ProductID}
				}
				return err
			}
			if err := tx.Inventory().TryReserve(ctx, l.ProductID, l.Quantity); err != nil {
				return err
			}
			order.Lines = append(order.Lines, model.OrderLine{
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitPrice: product.Price,
			})
		}

		order.Total = model.OrderTotal(order.Lines)
		if !order.Total.IsPositive() || !fitsMoney(order.Total) {
			return domainErrors.ErrInvalidAmount
		}

		if err := tx.Orders().Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return appendEvent(ctx, tx, order, now)
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrInsufficientStock) {
			c.metrics.ReservationFailed()
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int64("order.id", order.ID))
	c.metrics.OrderCreated()
	c.logger.Info("order created",
		slog.Int64("order_id", order.ID),
		slog.Int64("user_id", order.UserID),
		slog.String("total", order.Total.String()),
	)
	return order, nil
}

// ConfirmPayment records payment for a Pending order, moves it to Processing and
// opens a Pending shipment to the order's address.
func (c *FulfillmentCoordinator) ConfirmPayment(ctx context.Context, orderID int64, amount decimal.Decimal, method string) (_ *model.PaymentReceipt, err error) {
	ctx, span := tracer.Start(ctx, "FulfillmentCoordinator.ConfirmPayment", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer func() { endSpan(span, err) }()

	method, err = NormalizePaymentMethod(method)
	if err != nil {
		return nil, err
	}
	if err = ValidateAmount(amount); err != nil {
		return nil, err
	}

	var receipt *model.PaymentReceipt
	err = c.tx.Run(ctx, func(tx repository.Factory) error {
		order, err := tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if amount.LessThan(order.Total) {
			return fmt.Errorf("%w: paid %s of %s", domainErrors.ErrInsufficientPayment, amount, order.Total)
		}

		now := c.now()
		if err := c.transition(ctx, tx, order, model.TransitionPay, now); err != nil {
			return err
		}

		payment := &model.Payment{OrderID: order.ID, Amount: amount, Method: method, CreatedAt: now}
		if err := tx.Payments().Create(ctx, payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		shipment := &model.Shipment{OrderID: order.ID, AddressID: order.AddressID, Status: model.ShipmentStatusPending, CreatedAt: now}
		if err := tx.Shipments().Create(ctx, shipment); err != nil {
			return fmt.Errorf("create shipment: %w", err)
		}

		receipt = &model.PaymentReceipt{Order: order, Payment: payment, Shipment: shipment}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.committed(receipt.Order, "payment confirmed")
	return receipt, nil
}

// CancelOrder returns every reserved unit to stock and marks the order Cancelled.
func (c *FulfillmentCoordinator) CancelOrder(ctx context.Context, orderID int64) (_ *model.Order, err error) {
	ctx, span := tracer.Start(ctx, "FulfillmentCoordinator.CancelOrder", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer func() { endSpan(span, err) }()

	var order *model.Order
	err = c.tx.Run(ctx, func(tx repository.Factory) error {
		var err error
		order, err = tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if _, err := order.Status.Next(model.TransitionCancel); err != nil {
			return err
		}
		wasPaid := order.Status == model.OrderStatusProcessing

		for _, l := range order.Lines {
			if err := tx.Inventory().Release(ctx, l.ProductID, l.Quantity); err != nil {
				return fmt.Errorf("release product %d: %w", l.ProductID, err)
			}
		}

		if err := c.transition(ctx, tx, order, model.TransitionCancel, c.now()); err != nil {
			return err
		}

		if wasPaid {
			return moveShipment(ctx, tx, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.committed(order, "order cancelled")
	return order, nil
}

// AdvanceShippingStatus moves a paid order one step towards Delivered.
// Only Shipped and Delivered may be requested.
func (c *FulfillmentCoordinator) AdvanceShippingStatus(ctx context.Context, orderID int64, next model.OrderStatus) (_ *model.Order, err error) {
	ctx, span := tracer.Start(ctx, "FulfillmentCoordinator.AdvanceShippingStatus", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.String("order.next_status", string(next)),
	))
	defer func() { endSpan(span, err) }()

	t, err := model.AdvanceTransition(next)
	if err != nil {
		return nil, err
	}

	var order *model.Order
	err = c.tx.Run(ctx, func(tx repository.Factory) error {
		var err error
		order, err = tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := c.transition(ctx, tx, order, t, c.now()); err != nil {
			return err
		}
		return moveShipment(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	c.committed(order, "shipping status advanced")
	return order, nil
}

// transition applies t, persists the new status and records the lifecycle event.
func (c *FulfillmentCoordinator) transition(ctx context.Context, tx repository.Factory, order *model.Order, t model.Transition, now time.Time) error {
	if err := order.Apply(t, now); err != nil {
		return err
	}
	if err := tx.Orders().UpdateStatus(ctx, order.ID, order.Status, order.UpdatedAt); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return appendEvent(ctx, tx, order, now)
}

func (c *FulfillmentCoordinator) committed(order *model.Order, msg string) {
	c.metrics.OrderTransitioned(string(order.Status))
	c.logger.Info(msg, slog.Int64("order_id", order.ID), slog.String("status", string(order.Status)))
}

// moveShipment mirrors the order status onto its shipment. Only Pending shipments
// are cancelled; a cancelled Pending order has none.
func moveShipment(ctx context.Context, tx repository.Factory, order *model.Order) error {
	status, ok := model.ShipmentStatusFor(order.Status)
	if !ok {
		return nil
	}
	shipment, err := tx.Shipments().GetByOrder(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("load shipment for order %d: %w", order.ID, err)
	}
	if status == model.ShipmentStatusCancelled && shipment.Status != model.ShipmentStatusPending {
		return nil
	}
	if err := tx.Shipments().UpdateStatus(ctx, shipment.ID, status); err != nil {
		return fmt.Errorf("update shipment: %w", err)
	}
	return nil
}

func appendEvent(ctx context.Context, tx repository.Factory, order *model.Order, now time.Time) error {
	evt, err := model.NewOutboxEvent(order, now)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := tx.Outbox().Append(ctx, evt); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func checkOwner(ctx context.Context, catalog repository.CatalogRepository, userID, addressID int64) error {
	exists, err := catalog.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return &domainErrors.ReferenceError{Kind: domainErrors.ReferenceUser, ID: userID}
	}

	addr, err := catalog.GetAddress(ctx, addressID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return &domainErrors.ReferenceError{Kind: domainErrors.ReferenceAddress, ID: addressID}
		}
		return err
	}
	if addr.UserID != userID {
		return &domainErrors.ReferenceError{Kind: domainErrors.ReferenceAddress, ID: addressID}
	}
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
