package usecase

import (
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/fulfillment/internal/domain/errors"
	"github.com/polkiloo/fulfillment/internal/domain/model"
)

func TestNormalizeLines(t *testing.T) {
	lines, err := NormalizeLines([]model.LineRequest{line(3, 1), line(1, 2), line(3, 4)})
	require.NoError(t, err)
	assert.Equal(t, []model.LineRequest{line(1, 2), line(3, 5)}, lines)

	_, err = NormalizeLines(nil)
	assert.ErrorIs(t, err, domainErrors.ErrEmptyOrder)

	_, err = NormalizeLines([]model.LineRequest{line(1, 0)})
	assert.ErrorIs(t, err, domainErrors.ErrInvalidQuantity)

	_, err = NormalizeLines([]model.LineRequest{line(0, 1)})
	assert.ErrorIs(t, err, domainErrors.ErrInvalidReference)
}

func TestNormalizeLinesBoundsMergedQuantity(t *testing.T) {
	lines, err := NormalizeLines([]model.LineRequest{line(1, model.MaxQuantity-1), line(1, 1)})
	require.NoError(t, err)
	assert.Equal(t, []model.LineRequest{line(1, model.MaxQuantity)}, lines)

	_, err = NormalizeLines([]model.LineRequest{line(1, model.MaxQuantity), line(1, 1)})
	assert.ErrorIs(t, err, domainErrors.ErrInvalidQuantity)

	_, err = NormalizeLines([]model.LineRequest{line(1, math.MaxInt), line(1, math.MaxInt), line(2, 1)})
	assert.ErrorIs(t, err, domainErrors.ErrInvalidQuantity)

	_, err = NormalizeLines([]model.LineRequest{line(1, model.MaxQuantity+1)})
	assert.ErrorIs(t, err, domainErrors.ErrInvalidQuantity)
}

func TestNormalizePaymentMethod(t *testing.T) {
	method, err := NormalizePaymentMethod("  card ")
	require.NoError(t, err)
	assert.Equal(t, "card", method)

	_, err = NormalizePaymentMethod(strings.Repeat("ж", model.MaxPaymentMethodLength))
	assert.NoError(t, err, "length counts characters, not bytes")

	for _, bad := range []string{"", "   ", strings.Repeat("a", model.MaxPaymentMethodLength+1)} {
		_, err := NormalizePaymentMethod(bad)
		assert.ErrorIs(t, err, domainErrors.ErrInvalidPaymentMethod)
	}
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount(decimal.RequireFromString("0.01")))
	assert.ErrorIs(t, ValidateAmount(decimal.Zero), domainErrors.ErrInvalidAmount)
	assert.ErrorIs(t, ValidateAmount(decimal.NewFromInt(-1)), domainErrors.ErrInvalidAmount)

	assert.NoError(t, ValidateAmount(decimal.RequireFromString("9999999999.99")))
	assert.NoError(t, ValidateAmount(decimal.RequireFromString("100.10")))
	assert.ErrorIs(t, ValidateAmount(decimal.RequireFromString("100.004")), domainErrors.ErrInvalidAmount, "sub-cent amounts would be rounded on insert")
	assert.ErrorIs(t, ValidateAmount(decimal.RequireFromString("10000000000")), domainErrors.ErrInvalidAmount)
}
