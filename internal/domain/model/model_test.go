package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/fulfillment/internal/domain/errors"
)

func TestOrderStatusValues(t *testing.T) {
	cases := []struct {
		got   OrderStatus
		value string
	}{
		{OrderStatusPending, "Pending"},
		{OrderStatusProcessing, "Processing"},
		{OrderStatusShipped, "Shipped"},
		{OrderStatusDelivered, "Delivered"},
		{OrderStatusCancelled, "Cancelled"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.value, string(tc.got))
		assert.True(t, tc.got.Valid())
	}
	assert.False(t, OrderStatus("Lost").Valid())
}

func TestParseOrderStatus(t *testing.T) {
	s, err := ParseOrderStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, s)

	s, err = ParseOrderStatus(" PENDING ")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPending, s)

	_, err = ParseOrderStatus("returned")
	assert.Error(t, err)
}

func TestTransitionTable(t *testing.T) {
	legal := map[OrderStatus]map[Transition]OrderStatus{
		OrderStatusPending:    {TransitionPay: OrderStatusProcessing, TransitionCancel: OrderStatusCancelled},
		OrderStatusProcessing: {TransitionShip: OrderStatusShipped, TransitionCancel: OrderStatusCancelled},
		OrderStatusShipped:    {TransitionDeliver: OrderStatusDelivered},
	}
	all := []Transition{TransitionPay, TransitionShip, TransitionDeliver, TransitionCancel}

	for _, from := range orderStatuses {
		for _, tr := range all {
			next, err := from.Next(tr)
			want, ok := legal[from][tr]
			if ok {
				require.NoError(t, err, "%s --%s-->", from, tr)
				assert.Equal(t, want, next)
				assert.True(t, from.CanApply(tr))
				continue
			}
			assert.ErrorIs(t, err, domainErrors.ErrInvalidStatusTransition, "%s --%s-->", from, tr)
			assert.Equal(t, from, next)
			assert.False(t, from.CanApply(tr))
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, OrderStatusDelivered.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.False(t, OrderStatusPending.Terminal())
	assert.False(t, OrderStatusShipped.Terminal())
}

func TestAdvanceTransition(t *testing.T) {
	tr, err := AdvanceTransition(OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, TransitionShip, tr)

	tr, err = AdvanceTransition(OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, TransitionDeliver, tr)

	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusCancelled} {
		_, err := AdvanceTransition(s)
		assert.ErrorIs(t, err, domainErrors.ErrInvalidStatusTransition)
	}
}

func TestOrderApplyLeavesStateOnFailure(t *testing.T) {
	created := time.Unix(100, 0)
	order := &Order{ID: 1, Status: OrderStatusShipped, UpdatedAt: created}

	err := order.Apply(TransitionCancel, time.Unix(200, 0))
	require.True(t, errors.Is(err, domainErrors.ErrInvalidStatusTransition))
	assert.Equal(t, OrderStatusShipped, order.Status)
	assert.Equal(t, created, order.UpdatedAt)

	require.NoError(t, order.Apply(TransitionDeliver, time.Unix(300, 0)))
	assert.Equal(t, OrderStatusDelivered, order.Status)
	assert.Equal(t, time.Unix(300, 0), order.UpdatedAt)
}

func TestOrderTotal(t *testing.T) {
	lines := []OrderLine{
		{ProductID: 1, Quantity: 3, UnitPrice: decimal.RequireFromString("19.99")},
		{ProductID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("0.03")},
	}
	assert.True(t, OrderTotal(lines).Equal(decimal.RequireFromString("60.00")))
	assert.True(t, OrderTotal(nil).IsZero())
}

func TestShipmentStatusFor(t *testing.T) {
	s, ok := ShipmentStatusFor(OrderStatusShipped)
	assert.True(t, ok)
	assert.Equal(t, ShipmentStatusShipped, s)

	_, ok = ShipmentStatusFor(OrderStatusPending)
	assert.False(t, ok)
}

func TestNewOutboxEvent(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	order := &Order{ID: 42, UserID: 7, Status: OrderStatusProcessing, Total: decimal.NewFromInt(100)}

	evt, err := NewOutboxEvent(order, now)
	require.NoError(t, err)
	assert.Equal(t, EventOrderPaid, evt.Type)
	assert.Equal(t, int64(42), evt.AggregateID)
	assert.Nil(t, evt.PublishedAt)

	var decoded OrderEvent
	require.NoError(t, json.Unmarshal(evt.Payload, &decoded))
	assert.Equal(t, evt.EventID, decoded.EventID)
	assert.Equal(t, OrderStatusProcessing, decoded.Status)
	assert.True(t, decoded.Total.Equal(decimal.NewFromInt(100)))
}

func TestEventTypeFor(t *testing.T) {
	assert.Equal(t, EventOrderCreated, EventTypeFor(OrderStatusPending))
	assert.Equal(t, EventOrderShipped, EventTypeFor(OrderStatusShipped))
	assert.Equal(t, EventOrderDelivered, EventTypeFor(OrderStatusDelivered))
	assert.Equal(t, EventOrderCancelled, EventTypeFor(OrderStatusCancelled))
}
