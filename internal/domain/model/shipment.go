package model

import "time"

// ShipmentStatus tracks delivery progress.
type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "Pending"
	ShipmentStatusShipped   ShipmentStatus = "Shipped"
	ShipmentStatusDelivered ShipmentStatus = "Delivered"
	ShipmentStatusCancelled ShipmentStatus = "Cancelled"
)

// ShipmentStatusFor returns the shipment status mirroring an order status.
func ShipmentStatusFor(status OrderStatus) (ShipmentStatus, bool) {
	switch status {
	case OrderStatusProcessing:
		return ShipmentStatusPending, true
	case OrderStatusShipped:
		return ShipmentStatusShipped, true
	case OrderStatusDelivered:
		return ShipmentStatusDelivered, true
	case OrderStatusCancelled:
		return ShipmentStatusCancelled, true
	default:
		return "", false
	}
}

// Shipment is created when an order is paid.
type Shipment struct {
	ID        int64
	OrderID   int64
	AddressID int64
	Status    ShipmentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
