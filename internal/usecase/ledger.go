package usecase

import (
	"context"
	"errors"
	"log/slog"

	domainErrors "github.com/polkiloo/fulfillment/internal/domain/errors"
	"github.com/polkiloo/fulfillment/internal/domain/model"
	"github.com/polkiloo/fulfillment/internal/domain/repository"
)

// InventoryLedger exposes administrative stock operations.
type InventoryLedger struct {
	tx     *TxRunner
	store  repository.Factory
	logger *slog.Logger
}

// NewInventoryLedger constructs InventoryLedger.
func NewInventoryLedger(tx *TxRunner, store repository.Factory, logger *slog.Logger) *InventoryLedger {
	return &InventoryLedger{tx: tx, store: store, logger: logger}
}

// Get returns the stock record of productID.
func (l *InventoryLedger) Get(ctx context.Context, productID int64) (*model.StockRecord, error) {
	return l.store.Inventory().Get(ctx, productID)
}

// ListLowStock returns records at or below threshold, lowest first.
func (l *InventoryLedger) ListLowStock(ctx context.Context, threshold int) ([]model.StockRecord, error) {
	if threshold < 0 {
		return nil, domainErrors.ErrInvalidQuantity
	}
	return l.store.Inventory().ListLowStock(ctx, threshold)
}

// Initialize creates the stock record for a product that has none.
func (l *InventoryLedger) Initialize(ctx context.Context, productID int64, qty int) (*model.StockRecord, error) {
	if !validQuantity(qty) {
		return nil, domainErrors.ErrInvalidQuantity
	}
	return l.mutate(ctx, "stock initialized", productID, func(inv repository.InventoryRepository) (*model.StockRecord, error) {
		return inv.Create(ctx, productID, qty)
	})
}

// SetAbsolute overwrites the on-hand quantity.
func (l *InventoryLedger) SetAbsolute(ctx context.Context, productID int64, qty int) (*model.StockRecord, error) {
	if !validQuantity(qty) {
		return nil, domainErrors.ErrInvalidQuantity
	}
	return l.mutate(ctx, "stock set", productID, func(inv repository.InventoryRepository) (*model.StockRecord, error) {
		return inv.SetAbsolute(ctx, productID, qty)
	})
}

// Increase restocks qty units.
func (l *InventoryLedger) Increase(ctx context.Context, productID int64, qty int) (*model.StockRecord, error) {
	if qty <= 0 || !validQuantity(qty) {
		return nil, domainErrors.ErrInvalidQuantity
	}
	return l.mutate(ctx, "stock increased", productID, func(inv repository.InventoryRepository) (*model.StockRecord, error) {
		return inv.Increase(ctx, productID, qty)
	})
}

// Decrease removes qty units, failing with a StockError when fewer are on hand.
func (l *InventoryLedger) Decrease(ctx context.Context, productID int64, qty int) (*model.StockRecord, error) {
	if qty <= 0 || !validQuantity(qty) {
		return nil, domainErrors.ErrInvalidQuantity
	}
	return l.mutate(ctx, "stock decreased", productID, func(inv repository.InventoryRepository) (*model.StockRecord, error) {
		if err := inv.TryReserve(ctx, productID, qty); err != nil {
			return nil, err
		}
		return inv.Get(ctx, productID)
	})
}

// Adjust applies a signed delta.
func (l *InventoryLedger) Adjust(ctx context.Context, productID int64, delta int) (*model.StockRecord, error) {
	switch {
	case delta > 0:
		return l.Increase(ctx, productID, delta)
	case delta < 0:
		return l.Decrease(ctx, productID, -delta)
	default:
		return nil, domainErrors.ErrInvalidQuantity
	}
}

func (l *InventoryLedger) mutate(
	ctx context.Context,
	msg string,
	productID int64,
	op func(inv repository.InventoryRepository) (*model.StockRecord, error),
) (*model.StockRecord, error) {
	var rec *model.StockRecord
	err := l.tx.Run(ctx, func(tx repository.Factory) error {
		if err := requireProduct(ctx, tx.Catalog(), productID); err != nil {
			return err
		}
		var err error
		rec, err = op(tx.Inventory())
		return err
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info(msg, slog.Int64("product_id", productID), slog.Int("quantity", rec.Quantity))
	return rec, nil
}

func requireProduct(ctx context.Context, catalog repository.CatalogRepository, productID int64) error {
	if _, err := catalog.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return &domainErrors.ReferenceError{Kind: domainErrors.ReferenceProduct, ID: productID}
		}
		return err
	}
	return nil
}
