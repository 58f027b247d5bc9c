package model

import (
	"math"
	"time"
)

// MaxQuantity is the largest quantity a stock record or order line can hold.
const MaxQuantity = math.MaxInt32

// StockRecord is the on-hand quantity of one product.
type StockRecord struct {
	ProductID int64
	Quantity  int
	UpdatedAt time.Time
}

// LineRequest is a requested product quantity before pricing.
type LineRequest struct {
	ProductID int64
	Quantity  int
}
