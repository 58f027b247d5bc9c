package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/fulfillment/internal/domain/errors"
	"github.com/polkiloo/fulfillment/internal/domain/model"
)

type orderRepository struct {
	q querier
}

const orderColumns = `id, user_id, address_id, status, total, created_at, updated_at`

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const insertOrder = `INSERT INTO orders (user_id, address_id, status, total, created_at, updated_at)
                         VALUES ($1, $2, $3, $4, $5, $5)
                         RETURNING id`
	if err := r.q.QueryRow(ctx, insertOrder, order.UserID, order.AddressID, order.Status, order.Total, order.CreatedAt).Scan(&order.ID); err != nil {
		return err
	}
	order.UpdatedAt = order.CreatedAt

	const insertLine = `INSERT INTO order_lines (order_id, line_id, product_id, quantity, unit_price)
                        VALUES ($1, $2, $3, $4, $5)`
	for i := range order.Lines {
		line := &order.Lines[i]
		line.OrderID = order.ID
		line.LineID = int64(i + 1)
		if _, err := r.q.Exec(ctx, insertLine, line.OrderID, line.LineID, line.ProductID, line.Quantity, line.UnitPrice); err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepository) Get(ctx context.Context, id int64) (*model.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
}

func (r *orderRepository) GetForUpdate(ctx context.Context, id int64) (*model.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 FOR UPDATE`, id)
}

func (r *orderRepository) get(ctx context.Context, query string, id int64) (*model.Order, error) {
	var o model.Order
	err := r.q.QueryRow(ctx, query, id).Scan(&o.ID, &o.UserID, &o.AddressID, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrOrderNotFound
		}
		return nil, err
	}

	lines, err := r.lines(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	return &o, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus, updatedAt time.Time) error {
	const query = `UPDATE orders SET status=$2, updated_at=$3 WHERE id=$1`
	tag, err := r.q.Exec(ctx, query, id, status, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC, id DESC`, userID)
}

func (r *orderRepository) ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE status=$1 ORDER BY created_at DESC, id DESC`, status)
}

func (r *orderRepository) list(ctx context.Context, query string, arg any) ([]model.Order, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.AddressID, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return result, nil
	}

	ids := make([]int64, 0, len(result))
	for _, o := range result {
		ids = append(ids, o.ID)
	}
	lines, err := r.lines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Lines = lines[result[i].ID]
	}
	return result, nil
}

func (r *orderRepository) lines(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderLine, error) {
	const query = `SELECT order_id, line_id, product_id, quantity, unit_price
                   FROM order_lines WHERE order_id = ANY($1) ORDER BY order_id, line_id`
	rows, err := r.q.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]model.OrderLine, len(orderIDs))
	for rows.Next() {
		var l model.OrderLine
		if err := rows.Scan(&l.OrderID, &l.LineID, &l.ProductID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, err
		}
		result[l.OrderID] = append(result[l.OrderID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
