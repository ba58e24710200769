package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	orderdomain "github.com/dmehra2102/ordersystem/internal/order/domain"
	"github.com/dmehra2102/ordersystem/internal/payment/domain"
	"github.com/dmehra2102/ordersystem/pkg/apperr"
	"github.com/dmehra2102/ordersystem/pkg/outbox"
)

type Service struct {
	log      *slog.Logger
	uow      UnitOfWork
	payments PaymentRepository
	orders   OrderReader
	stock    StockRestorer
	events   outbox.Recorder
	tracer   trace.Tracer
	txnIDs   func() string
}

type Option func(*Service)

// WithTransactionIDs replaces the transaction id generator.
func WithTransactionIDs(next func() string) Option {
	return func(s *Service) { s.txnIDs = next }
}

func NewService(log *slog.Logger, uow UnitOfWork, payments PaymentRepository, orders OrderReader, stock StockRestorer, events outbox.Recorder, opts ...Option) *Service {
	s := &Service{
		log:      log,
		uow:      uow,
		payments: payments,
		orders:   orders,
		stock:    stock,
		events:   events,
		tracer:   otel.Tracer("payment-service"),
		txnIDs:   domain.GenerateTransactionID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessPayment settles the full order total. An order is paid at most once.
func (s *Service) ProcessPayment(ctx context.Context, orderID int64, method string) (int64, error) {
	const op = "payment.Process"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attribute.Int64("order_id", orderID)))
	defer span.End()

	m, err := domain.ParseMethod(method)
	if err != nil {
		return 0, apperr.InvalidArgument(op, err, "unknown payment method %q", method)
	}

	var p domain.Payment
	err = s.uow.RunInTx(ctx, func(ctx context.Context) error {
		o, err := s.order(ctx, op, orderID)
		if err != nil {
			return err
		}
		paid, err := s.payments.ExistsByOrder(ctx, orderID)
		if err != nil {
			return apperr.Internal(op, err)
		}
		if paid {
			return apperr.InvalidArgument(op, domain.ErrDuplicatePayment, "order %d already has a payment", orderID)
		}

		p = domain.NewPayment(o.ID, o.TotalAmount, m)
		p.TransactionID = s.txnIDs()
		err = s.payments.Create(ctx, &p)
		if errors.Is(err, domain.ErrDuplicateTxnID) {
			s.log.Warn("transaction id collision, regenerating", "order_id", orderID, "transaction_id", p.TransactionID)
			p.TransactionID = s.txnIDs()
			err = s.payments.Create(ctx, &p)
		}
		if err != nil {
			if errors.Is(err, domain.ErrDuplicatePayment) {
				return apperr.InvalidArgument(op, err, "order %d already has a payment", orderID)
			}
			return apperr.Internal(op, err)
		}
		return s.record(ctx, op, p.ID, domain.EventPaymentCompleted, domain.PaymentCompleted{
			PaymentID:     p.ID,
			OrderID:       p.OrderID,
			Amount:        p.Amount,
			Method:        p.Method,
			TransactionID: p.TransactionID,
		})
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("payment completed", "payment_id", p.ID, "order_id", orderID, "amount", p.Amount.String(), "txn", p.TransactionID)
	return p.ID, nil
}

// CancelPayment voids the payment and returns the order's items to stock in
// the same unit of work.
func (s *Service) CancelPayment(ctx context.Context, id int64) error {
	const op = "payment.Cancel"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attribute.Int64("payment_id", id)))
	defer span.End()

	var orderID int64
	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.get(ctx, op, id)
		if err != nil {
			return err
		}
		orderID = p.OrderID
		if err := p.Cancel(); err != nil {
			return apperr.InvalidState(op, err, "payment %d is already %s", id, p.Status)
		}
		o, err := s.order(ctx, op, p.OrderID)
		if err != nil {
			return err
		}
		if o.Shipped() {
			return apperr.InvalidState(op, domain.ErrOrderShipped, "cannot cancel payment for shipped/delivered order")
		}
		if err := s.payments.Update(ctx, p); err != nil {
			return apperr.Internal(op, err)
		}
		if err := s.stock.RestoreStock(ctx, o); err != nil {
			return err
		}
		return s.record(ctx, op, id, domain.EventPaymentCancelled, domain.PaymentCancelled{PaymentID: id, OrderID: p.OrderID})
	})
	if err != nil {
		return err
	}
	s.log.Info("payment cancelled", "payment_id", id, "order_id", orderID)
	return nil
}

// RefundPayment returns amount to the customer. Any refund, partial or full,
// leaves the payment REFUNDED, so a payment is refunded at most once.
func (s *Service) RefundPayment(ctx context.Context, id int64, amount decimal.Decimal) error {
	const op = "payment.Refund"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attribute.Int64("payment_id", id)))
	defer span.End()

	var remaining decimal.Decimal
	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.get(ctx, op, id)
		if err != nil {
			return err
		}
		if err := p.Refund(amount); err != nil {
			switch {
			case errors.Is(err, domain.ErrNotRefundable):
				return apperr.InvalidState(op, err, "only completed payments may be refunded")
			case errors.Is(err, domain.ErrRefundExceeds):
				return apperr.InvalidArgument(op, err, "refund exceeds payment amount")
			case errors.Is(err, domain.ErrRefundPrecision):
				return apperr.InvalidArgument(op, err, "refund amount may have at most 2 decimal places")
			default:
				return apperr.InvalidArgument(op, err, "refund amount must be positive")
			}
		}
		if err := s.payments.Update(ctx, p); err != nil {
			return apperr.Internal(op, err)
		}
		remaining = p.Amount
		return s.record(ctx, op, id, domain.EventPaymentRefunded, domain.PaymentRefunded{
			PaymentID: id,
			OrderID:   p.OrderID,
			Refunded:  amount,
			Remaining: p.Amount,
		})
	})
	if err != nil {
		return err
	}
	s.log.Info("payment refunded", "payment_id", id, "refunded", amount.String(), "remaining", remaining.String())
	return nil
}

func (s *Service) DeletePayment(ctx context.Context, id int64) error {
	const op = "payment.Delete"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attribute.Int64("payment_id", id)))
	defer span.End()

	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.get(ctx, op, id); err != nil {
			return err
		}
		if err := s.payments.Delete(ctx, id); err != nil {
			return apperr.Internal(op, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("payment deleted", "payment_id", id)
	return nil
}

func (s *Service) get(ctx context.Context, op string, id int64) (domain.Payment, error) {
	p, err := s.payments.Get(ctx, id)
	if errors.Is(err, domain.ErrPaymentNotFound) {
		return domain.Payment{}, apperr.NotFound(op, err, "payment %d not found", id)
	}
	if err != nil {
		return domain.Payment{}, apperr.Internal(op, err)
	}
	return p, nil
}

func (s *Service) order(ctx context.Context, op string, id int64) (orderdomain.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if errors.Is(err, orderdomain.ErrOrderNotFound) {
		return orderdomain.Order{}, apperr.NotFound(op, err, "order %d not found", id)
	}
	if err != nil {
		return orderdomain.Order{}, apperr.Internal(op, err)
	}
	return o, nil
}

func (s *Service) record(ctx context.Context, op string, paymentID int64, eventType string, payload any) error {
	if err := outbox.Record(ctx, s.events, domain.AggregateType, paymentID, eventType, payload); err != nil {
		return apperr.Internal(op, err)
	}
	return nil
}
