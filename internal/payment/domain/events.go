package domain

import "github.com/shopspring/decimal"

const AggregateType = "payment"

const (
	EventPaymentCompleted = "PaymentCompleted"
	EventPaymentCancelled = "PaymentCancelled"
	EventPaymentRefunded  = "PaymentRefunded"
)

type PaymentCompleted struct {
	PaymentID     int64           `json:"payment_id"`
	OrderID       int64           `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        Method          `json:"method"`
	TransactionID string          `json:"transaction_id"`
}

type PaymentCancelled struct {
	PaymentID int64 `json:"payment_id"`
	OrderID   int64 `json:"order_id"`
}

type PaymentRefunded struct {
	PaymentID int64           `json:"payment_id"`
	OrderID   int64           `json:"order_id"`
	Refunded  decimal.Decimal `json:"refunded"`
	Remaining decimal.Decimal `json:"remaining"`
}
