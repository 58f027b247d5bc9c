package model

import "github.com/shopspring/decimal"

// Product is the catalog view needed to price an order line.
type Product struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

// Address is a shipping destination owned by a user.
type Address struct {
	ID     int64
	UserID int64
}
