package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	sentinel := errors.New("order: not found")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("order.get", sentinel, "order %d not found", 7), KindNotFound},
		{"invalid argument", InvalidArgument("payment.refund", nil, "refund amount must be positive"), KindInvalidArgument},
		{"invalid state", InvalidState("order.cancel", nil, "already shipped"), KindInvalidState},
		{"wrapped", fmt.Errorf("handler: %w", InvalidState("x", nil, "y")), KindInvalidState},
		{"plain error", errors.New("boom"), KindInternal},
		{"internal", Internal("store", errors.New("conn reset")), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorUnwrapsSentinel(t *testing.T) {
	sentinel := errors.New("payment: duplicate")
	err := InvalidArgument("payment.process", sentinel, "order %d already paid", 5)

	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, "payment.process: order 5 already paid", err.Error())
	assert.Equal(t, "order 5 already paid", Message(err))
}

func TestMessageHidesInternalDetail(t *testing.T) {
	err := Internal("store.save", errors.New("pq: connection refused"))
	assert.Equal(t, "internal error", Message(err))
	assert.Nil(t, Internal("noop", nil))
}
