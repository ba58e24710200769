package domain

import "github.com/shopspring/decimal"

const AggregateType = "order"

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventOrderCancelled     = "OrderCancelled"
	EventOrderDeleted       = "OrderDeleted"
)

type OrderCreated struct {
	OrderID     int64           `json:"order_id"`
	MemberID    int64           `json:"member_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []OrderItemLine `json:"items"`
}

type OrderItemLine struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderStatusChanged struct {
	OrderID int64       `json:"order_id"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
}

type OrderCancelled struct {
	OrderID int64 `json:"order_id"`
}

type OrderDeleted struct {
	OrderID int64 `json:"order_id"`
}

func NewOrderCreated(o Order) OrderCreated {
	lines := make([]OrderItemLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, OrderItemLine{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return OrderCreated{OrderID: o.ID, MemberID: o.MemberID, TotalAmount: o.TotalAmount, Items: lines}
}
