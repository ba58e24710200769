package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/ordersystem/internal/payment/domain"
	"github.com/dmehra2102/ordersystem/pkg/apperr"
)

type PaymentView struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"orderId"`
	Amount        decimal.Decimal `json:"amount"`
	Method        domain.Method   `json:"paymentMethod"`
	Status        domain.Status   `json:"status"`
	TransactionID string          `json:"transactionId"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type PaymentReader interface {
	Get(ctx context.Context, id int64) (domain.Payment, error)
	GetByOrder(ctx context.Context, orderID int64) (domain.Payment, error)
	List(ctx context.Context) ([]domain.Payment, error)
}

type Query struct {
	payments PaymentReader
}

func NewQuery(payments PaymentReader) *Query {
	return &Query{payments: payments}
}

func (q *Query) GetPayment(ctx context.Context, id int64) (PaymentView, error) {
	p, err := q.payments.Get(ctx, id)
	if errors.Is(err, domain.ErrPaymentNotFound) {
		return PaymentView{}, apperr.NotFound("payment.Get", err, "payment %d not found", id)
	}
	if err != nil {
		return PaymentView{}, apperr.Internal("payment.Get", err)
	}
	return toView(p), nil
}

func (q *Query) GetPaymentByOrder(ctx context.Context, orderID int64) (PaymentView, error) {
	p, err := q.payments.GetByOrder(ctx, orderID)
	if errors.Is(err, domain.ErrPaymentNotFound) {
		return PaymentView{}, apperr.NotFound("payment.GetByOrder", err, "no payment for order %d", orderID)
	}
	if err != nil {
		return PaymentView{}, apperr.Internal("payment.GetByOrder", err)
	}
	return toView(p), nil
}

func (q *Query) ListPayments(ctx context.Context) ([]PaymentView, error) {
	payments, err := q.payments.List(ctx)
	if err != nil {
		return nil, apperr.Internal("payment.List", err)
	}
	out := make([]PaymentView, 0, len(payments))
	for _, p := range payments {
		out = append(out, toView(p))
	}
	return out, nil
}

func toView(p domain.Payment) PaymentView {
	return PaymentView{
		ID:            p.ID,
		OrderID:       p.OrderID,
		Amount:        p.Amount,
		Method:        p.Method,
		Status:        p.Status,
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt,
	}
}
