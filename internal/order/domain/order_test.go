package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderTotal(t *testing.T) {
	a, err := NewOrderItem(1, decimal.NewFromInt(10000), 2)
	require.NoError(t, err)
	b, err := NewOrderItem(2, decimal.NewFromInt(20000), 1)
	require.NoError(t, err)

	o := NewOrder(7, []OrderItem{a, b})
	assert.Equal(t, StatusConfirmed, o.Status)
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(40000)), o.TotalAmount.String())
	assert.True(t, a.Amount.Equal(decimal.NewFromInt(20000)))

	empty := NewOrder(7, nil)
	assert.True(t, empty.TotalAmount.IsZero())
}

func TestNewOrderItemRejectsNonPositiveQuantity(t *testing.T) {
	_, err := NewOrderItem(1, decimal.NewFromInt(1), 0)
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestCancel(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		wantErr error
	}{
		{StatusConfirmed, nil},
		{StatusCancelled, nil},
		{StatusShipped, ErrAlreadyShipped},
		{StatusDelivered, ErrAlreadyShipped},
	}
	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			o := Order{Status: tt.from}
			err := o.Cancel()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, o.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusCancelled, o.Status)
		})
	}
}

func TestChangeStatus(t *testing.T) {
	o := Order{Status: StatusDelivered}
	require.NoError(t, o.ChangeStatus(StatusConfirmed, false))
	assert.Equal(t, StatusConfirmed, o.Status)

	require.NoError(t, o.ChangeStatus(StatusShipped, true))
	require.NoError(t, o.ChangeStatus(StatusDelivered, true))
	assert.ErrorIs(t, o.ChangeStatus(StatusCancelled, true), ErrInvalidTransition)
	assert.Equal(t, StatusDelivered, o.Status)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, st)

	_, err = ParseStatus("LOST")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}
