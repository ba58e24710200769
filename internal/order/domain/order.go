package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound     = errors.New("order: not found")
	ErrInvalidOrder      = errors.New("order: invalid input")
	ErrUnknownStatus     = errors.New("order: unknown status")
	ErrAlreadyShipped    = errors.New("order: already shipped")
	ErrInvalidTransition = errors.New("order: invalid status transition")
)

type OrderStatus string

const (
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
}

// ParseStatus accepts a status name in any letter case.
func ParseStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// CanTransition reports whether the fulfilment workflow allows moving from
// current to target. DELIVERED and CANCELLED are terminal.
func CanTransition(current, target OrderStatus) bool {
	if current == target {
		return true
	}
	return slices.Contains(statusTransitions[current], target)
}

type Order struct {
	ID          int64
	MemberID    int64
	TotalAmount decimal.Decimal
	Status      OrderStatus
	Items       []OrderItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
	Amount    decimal.Decimal
}

// NewOrderItem snapshots the unit price at the moment of ordering.
func NewOrderItem(productID int64, price decimal.Decimal, quantity int) (OrderItem, error) {
	if quantity <= 0 {
		return OrderItem{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidOrder)
	}
	return OrderItem{
		ProductID: productID,
		Quantity:  quantity,
		Price:     price,
		Amount:    price.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}

func NewOrder(memberID int64, items []OrderItem) Order {
	now := time.Now().UTC()
	return Order{
		MemberID:    memberID,
		Items:       items,
		TotalAmount: Total(items),
		Status:      StatusConfirmed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Total sums the line amounts; an order without lines totals zero.
func Total(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	return total
}

// Shipped reports whether the goods have left the warehouse.
func (o Order) Shipped() bool {
	return o.Status == StatusShipped || o.Status == StatusDelivered
}

func (o *Order) Cancel() error {
	if o.Shipped() {
		return ErrAlreadyShipped
	}
	o.Status = StatusCancelled
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// ChangeStatus sets the status. With strict set, only workflow transitions
// are accepted.
func (o *Order) ChangeStatus(target OrderStatus, strict bool) error {
	if strict && !CanTransition(o.Status, target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, target)
	}
	o.Status = target
	o.UpdatedAt = time.Now().UTC()
	return nil
}
