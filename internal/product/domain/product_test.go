package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T, stock int) Product {
	t.Helper()
	p, err := NewProduct(NewProductParams{Name: "Keyboard", Price: decimal.NewFromInt(10000), Stock: stock})
	require.NoError(t, err)
	return p
}

func TestDecreaseStockFailsClosed(t *testing.T) {
	p := newTestProduct(t, 10)

	err := p.DecreaseStock(15)
	require.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr *StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Keyboard", stockErr.ProductName)
	assert.Equal(t, 10, stockErr.Available)
	assert.Equal(t, 15, stockErr.Requested)
	assert.Equal(t, 10, p.Stock)
}

func TestStockLedger(t *testing.T) {
	p := newTestProduct(t, 10)

	require.NoError(t, p.DecreaseStock(10))
	assert.Equal(t, 0, p.Stock)
	assert.False(t, p.HasEnoughStock(1))

	require.NoError(t, p.IncreaseStock(3))
	assert.Equal(t, 3, p.Stock)
	assert.True(t, p.HasEnoughStock(3))

	assert.ErrorIs(t, p.DecreaseStock(0), ErrInvalidQuantity)
	assert.ErrorIs(t, p.IncreaseStock(-2), ErrInvalidQuantity)
	assert.Equal(t, 3, p.Stock)
}

func TestNewProductValidation(t *testing.T) {
	tests := []struct {
		name   string
		params NewProductParams
	}{
		{"blank name", NewProductParams{Name: "  ", Price: decimal.NewFromInt(1)}},
		{"negative price", NewProductParams{Name: "Mouse", Price: decimal.NewFromInt(-1)}},
		{"negative stock", NewProductParams{Name: "Mouse", Price: decimal.NewFromInt(1), Stock: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProduct(tt.params)
			assert.ErrorIs(t, err, ErrInvalidProduct)
		})
	}
}
