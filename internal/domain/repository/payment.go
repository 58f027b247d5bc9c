package repository

import (
	"context"

	"github.com/polkiloo/fulfillment/internal/domain/model"
)

// PaymentRepository stores payment records.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByOrder(ctx context.Context, orderID int64) (*model.Payment, error)
}

// ShipmentRepository stores shipment records.
type ShipmentRepository interface {
	Create(ctx context.Context, shipment *model.Shipment) error
	GetByOrder(ctx context.Context, orderID int64) (*model.Shipment, error)
	UpdateStatus(ctx context.Context, id int64, status model.ShipmentStatus) error
}
