package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domainErrors "github.com/polkiloo/fulfillment/internal/domain/errors"
	"github.com/polkiloo/fulfillment/internal/domain/model"
)

type inventoryRepository struct {
	q querier
}

const stockColumns = `product_id, quantity, updated_at`

// TryReserve locks the stock row before the check so concurrent reservations serialize on it.
// A product without a stock row has nothing on hand.
func (r *inventoryRepository) TryReserve(ctx context.Context, productID int64, qty int) error {
	const lockQuery = `SELECT quantity FROM inventory WHERE product_id=$1 FOR UPDATE`
	var available int
	if err := r.q.QueryRow(ctx, lockQuery, productID).Scan(&available); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		available = 0
	}
	if available < qty {
		return &domainErrors.StockError{ProductID: productID, Requested: qty, Available: available}
	}

	const deduct = `UPDATE inventory SET quantity = quantity - $2, updated_at = NOW() WHERE product_id=$1`
	if _, err := r.q.Exec(ctx, deduct, productID, qty); err != nil {
		if isCode(err, codeCheckViolation) {
			return &domainErrors.StockError{ProductID: productID, Requested: qty, Available: available}
		}
		return err
	}
	return nil
}

func (r *inventoryRepository) Release(ctx context.Context, productID int64, qty int) error {
	const query = `INSERT INTO inventory (product_id, quantity) VALUES ($1, $2)
                   ON CONFLICT (product_id) DO UPDATE
                   SET quantity = inventory.quantity + EXCLUDED.quantity, updated_at = NOW()`
	if _, err := r.q.Exec(ctx, query, productID, qty); err != nil {
		return referenceError(err, productID)
	}
	return nil
}

func (r *inventoryRepository) SetAbsolute(ctx context.Context, productID int64, qty int) (*model.StockRecord, error) {
	const query = `INSERT INTO inventory (product_id, quantity) VALUES ($1, $2)
                   ON CONFLICT (product_id) DO UPDATE
                   SET quantity = EXCLUDED.quantity, updated_at = NOW()
                   RETURNING ` + stockColumns
	return r.upsert(ctx, query, productID, qty)
}

func (r *inventoryRepository) Increase(ctx context.Context, productID int64, qty int) (*model.StockRecord, error) {
	const query = `INSERT INTO inventory (product_id, quantity) VALUES ($1, $2)
                   ON CONFLICT (product_id) DO UPDATE
                   SET quantity = inventory.quantity + EXCLUDED.quantity, updated_at = NOW()
                   RETURNING ` + stockColumns
	return r.upsert(ctx, query, productID, qty)
}

func (r *inventoryRepository) Create(ctx context.Context, productID int64, qty int) (*model.StockRecord, error) {
	const query = `INSERT INTO inventory (product_id, quantity) VALUES ($1, $2) RETURNING ` + stockColumns
	rec, err := r.upsert(ctx, query, productID, qty)
	if err != nil && isCode(err, codeUniqueViolation) {
		return nil, domainErrors.ErrAlreadyExists
	}
	return rec, err
}

func (r *inventoryRepository) upsert(ctx context.Context, query string, productID int64, qty int) (*model.StockRecord, error) {
	var rec model.StockRecord
	if err := r.q.QueryRow(ctx, query, productID, qty).Scan(&rec.ProductID, &rec.Quantity, &rec.UpdatedAt); err != nil {
		return nil, referenceError(err, productID)
	}
	return &rec, nil
}

func (r *inventoryRepository) Get(ctx context.Context, productID int64) (*model.StockRecord, error) {
	const query = `SELECT ` + stockColumns + ` FROM inventory WHERE product_id=$1`
	var rec model.StockRecord
	if err := r.q.QueryRow(ctx, query, productID).Scan(&rec.ProductID, &rec.Quantity, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *inventoryRepository) ListLowStock(ctx context.Context, threshold int) ([]model.StockRecord, error) {
	const query = `SELECT ` + stockColumns + ` FROM inventory WHERE quantity <= $1 ORDER BY quantity, product_id`
	rows, err := r.q.Query(ctx, query, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.StockRecord
	for rows.Next() {
		var rec model.StockRecord
		if err := rows.Scan(&rec.ProductID, &rec.Quantity, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func isCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func referenceError(err error, productID int64) error {
	if isCode(err, codeForeignKeyViolation) {
		return &domainErrors.ReferenceError{Kind: domainErrors.ReferenceProduct, ID: productID}
	}
	return err
}
