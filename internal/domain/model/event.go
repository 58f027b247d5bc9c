package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType names an order lifecycle event.
type EventType string

const (
	EventOrderCreated   EventType = "order.created"
	EventOrderPaid      EventType = "order.paid"
	EventOrderShipped   EventType = "order.shipped"
	EventOrderDelivered EventType = "order.delivered"
	EventOrderCancelled EventType = "order.cancelled"
)

// EventTypeFor returns the event emitted when an order enters status.
func EventTypeFor(status OrderStatus) EventType {
	switch status {
	case OrderStatusProcessing:
		return EventOrderPaid
	case OrderStatusShipped:
		return EventOrderShipped
	case OrderStatusDelivered:
		return EventOrderDelivered
	case OrderStatusCancelled:
		return EventOrderCancelled
	default:
		return EventOrderCreated
	}
}

// OrderEvent is the published payload of a lifecycle event.
type OrderEvent struct {
	EventID    uuid.UUID       `json:"event_id"`
	Type       EventType       `json:"type"`
	OrderID    int64           `json:"order_id"`
	UserID     int64           `json:"user_id"`
	Status     OrderStatus     `json:"status"`
	Total      decimal.Decimal `json:"total"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// OutboxEvent is a lifecycle event stored alongside the state change that caused it.
type OutboxEvent struct {
	ID          int64
	EventID     uuid.UUID
	AggregateID int64
	Type        EventType
	Payload     []byte
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// NewOutboxEvent snapshots order into an unpublished event.
func NewOutboxEvent(order *Order, now time.Time) (*OutboxEvent, error) {
	id := uuid.New()
	evt := OrderEvent{
		EventID:    id,
		Type:       EventTypeFor(order.Status),
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		Total:      order.Total,
		OccurredAt: now,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	return &OutboxEvent{
		EventID:     id,
		AggregateID: order.ID,
		Type:        evt.Type,
		Payload:     payload,
		CreatedAt:   now,
	}, nil
}
