package repository

import "context"

// Factory describes access to different domain repositories bound to one store handle.
type Factory interface {
	Inventory() InventoryRepository
	Orders() OrderRepository
	Payments() PaymentRepository
	Shipments() ShipmentRepository
	Catalog() CatalogRepository
	Outbox() OutboxRepository
}

// UnitOfWork runs fn against repositories sharing one serializable transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type UnitOfWork interface {
	WithinTransaction(ctx context.Context, fn func(tx Factory) error) error
}
