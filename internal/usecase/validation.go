package usecase

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/fulfillment/internal/domain/errors"
	"github.com/polkiloo/fulfillment/internal/domain/model"
)

// NormalizeLines validates requested lines and merges repeated products.
// The result is ordered by product id so every reservation locks rows in the same order.
func NormalizeLines(lines []model.LineRequest) ([]model.LineRequest, error) {
	if len(lines) == 0 {
		return nil, domainErrors.ErrEmptyOrder
	}

	merged := make(map[int64]int, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, domainErrors.ErrInvalidQuantity
		}
		if l.ProductID <= 0 {
			return nil, &domainErrors.ReferenceError{Kind: domainErrors.ReferenceProduct, ID: l.ProductID}
		}
		if l.Quantity > model.MaxQuantity-merged[l.ProductID] {
			return nil, domainErrors.ErrInvalidQuantity
		}
		merged[l.ProductID] += l.Quantity
	}

	out := make([]model.LineRequest, 0, len(merged))
	for id, qty := range merged {
		out = append(out, model.LineRequest{ProductID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// NormalizePaymentMethod trims method and checks its length.
func NormalizePaymentMethod(method string) (string, error) {
	method = strings.TrimSpace(method)
	if method == "" || utf8.RuneCountInString(method) > model.MaxPaymentMethodLength {
		return "", domainErrors.ErrInvalidPaymentMethod
	}
	return method, nil
}

// ValidateAmount rejects zero and negative payments and values that do not fit
// the stored money column without rounding.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !fitsMoney(amount) {
		return domainErrors.ErrInvalidAmount
	}
	return nil
}

func fitsMoney(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(model.AmountScale)) && amount.Abs().LessThan(model.MaxAmount)
}

func validQuantity(qty int) bool {
	return qty >= 0 && qty <= model.MaxQuantity
}
