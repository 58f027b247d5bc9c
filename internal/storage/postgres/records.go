package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/fulfillment/internal/domain/errors"
	"github.com/polkiloo/fulfillment/internal/domain/model"
)

// --- PaymentRepository implementation ---

type paymentRepository struct {
	q querier
}

func (r *paymentRepository) Create(ctx context.Context, p *model.Payment) error {
	const query = `INSERT INTO payments (order_id, amount, method, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	return r.q.QueryRow(ctx, query, p.OrderID, p.Amount, p.Method, p.CreatedAt).Scan(&p.ID)
}

func (r *paymentRepository) GetByOrder(ctx context.Context, orderID int64) (*model.Payment, error) {
	const query = `SELECT id, order_id, amount, method, created_at FROM payments WHERE order_id=$1`
	var p model.Payment
	if err := r.q.QueryRow(ctx, query, orderID).Scan(&p.ID, &p.OrderID, &p.Amount, &p.Method, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// --- ShipmentRepository implementation ---

type shipmentRepository struct {
	q querier
}

func (r *shipmentRepository) Create(ctx context.Context, s *model.Shipment) error {
	const query = `INSERT INTO shipments (order_id, address_id, status, created_at, updated_at)
                   VALUES ($1, $2, $3, $4, $4) RETURNING id`
	if err := r.q.QueryRow(ctx, query, s.OrderID, s.AddressID, s.Status, s.CreatedAt).Scan(&s.ID); err != nil {
		return err
	}
	s.UpdatedAt = s.CreatedAt
	return nil
}

func (r *shipmentRepository) GetByOrder(ctx context.Context, orderID int64) (*model.Shipment, error) {
	const query = `SELECT id, order_id, address_id, status, created_at, updated_at FROM shipments WHERE order_id=$1`
	var s model.Shipment
	if err := r.q.QueryRow(ctx, query, orderID).Scan(&s.ID, &s.OrderID, &s.AddressID, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *shipmentRepository) UpdateStatus(ctx context.Context, id int64, status model.ShipmentStatus) error {
	const query = `UPDATE shipments SET status=$2, updated_at=NOW() WHERE id=$1`
	tag, err := r.q.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// --- CatalogRepository implementation ---

type catalogRepository struct {
	q querier
}

func (r *catalogRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE id=$1)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *catalogRepository) GetAddress(ctx context.Context, addressID int64) (*model.Address, error) {
	const query = `SELECT id, user_id FROM addresses WHERE id=$1`
	var a model.Address
	if err := r.q.QueryRow(ctx, query, addressID).Scan(&a.ID, &a.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *catalogRepository) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	const query = `SELECT id, name, price FROM products WHERE id=$1`
	var p model.Product
	if err := r.q.QueryRow(ctx, query, productID).Scan(&p.ID, &p.Name, &p.Price); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
