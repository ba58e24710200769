package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrPaymentNotFound  = errors.New("payment: not found")
	ErrDuplicatePayment = errors.New("payment: order already paid")
	ErrUnknownMethod    = errors.New("payment: unknown method")
	ErrInvalidRefund    = errors.New("payment: invalid refund amount")
	ErrRefundExceeds    = errors.New("payment: refund exceeds payment amount")
	ErrRefundPrecision  = errors.New("payment: refund amount has more than 2 decimal places")
	ErrDuplicateTxnID   = errors.New("payment: transaction id already issued")
	ErrNotRefundable    = errors.New("payment: only completed payments may be refunded")
	ErrNotCancellable   = errors.New("payment: already cancelled or refunded")
	ErrOrderShipped     = errors.New("payment: cannot cancel payment for shipped/delivered order")
)

type Method string

const (
	MethodCard         Method = "CARD"
	MethodBankTransfer Method = "BANK_TRANSFER"
	MethodCash         Method = "CASH"
	MethodMobilePay    Method = "MOBILE_PAY"
)

func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case MethodCard, MethodBankTransfer, MethodCash, MethodMobilePay:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
	StatusRefunded  Status = "REFUNDED"
)

type Payment struct {
	ID            int64
	OrderID       int64
	Amount        decimal.Decimal
	Method        Method
	Status        Status
	TransactionID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewPayment records a settled payment for the full order amount.
func NewPayment(orderID int64, amount decimal.Decimal, method Method) Payment {
	now := time.Now().UTC()
	return Payment{
		OrderID:       orderID,
		Amount:        amount,
		Method:        method,
		Status:        StatusCompleted,
		TransactionID: GenerateTransactionID(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func GenerateTransactionID() string {
	return "TXN_" + uuid.NewString()[:8]
}

func (p *Payment) Cancel() error {
	if p.Status == StatusCancelled || p.Status == StatusRefunded {
		return ErrNotCancellable
	}
	p.Status = StatusCancelled
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Refund shrinks the payment by amount. The payment is REFUNDED afterwards
// even when part of the amount remains.
func (p *Payment) Refund(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidRefund
	}
	if !amount.Equal(amount.Round(2)) {
		return ErrRefundPrecision
	}
	if p.Status != StatusCompleted {
		return ErrNotRefundable
	}
	if amount.GreaterThan(p.Amount) {
		return ErrRefundExceeds
	}
	p.Amount = p.Amount.Sub(amount)
	p.Status = StatusRefunded
	p.UpdatedAt = time.Now().UTC()
	return nil
}
