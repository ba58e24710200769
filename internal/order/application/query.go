package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	memberdomain "github.com/dmehra2102/ordersystem/internal/member/domain"
	"github.com/dmehra2102/ordersystem/internal/order/domain"
	"github.com/dmehra2102/ordersystem/pkg/apperr"
)

type OrderView struct {
	ID          int64              `json:"id"`
	MemberID    int64              `json:"memberId"`
	MemberName  string             `json:"memberName"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
	Status      domain.OrderStatus `json:"status"`
	Items       []OrderItemView    `json:"orderItems"`
	CreatedAt   time.Time          `json:"createdAt"`
}

type OrderItemView struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Amount      decimal.Decimal `json:"amount"`
}

type OrderReader interface {
	Get(ctx context.Context, id int64) (domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByMember(ctx context.Context, memberID int64) ([]domain.Order, error)
}

// Query joins orders with member and product names for display.
type Query struct {
	orders   OrderReader
	members  MemberReader
	products ProductReader
}

func NewQuery(orders OrderReader, members MemberReader, products ProductReader) *Query {
	return &Query{orders: orders, members: members, products: products}
}

func (q *Query) GetOrder(ctx context.Context, id int64) (OrderView, error) {
	const op = "order.Get"
	o, err := q.orders.Get(ctx, id)
	if errors.Is(err, domain.ErrOrderNotFound) {
		return OrderView{}, apperr.NotFound(op, err, "order %d not found", id)
	}
	if err != nil {
		return OrderView{}, apperr.Internal(op, err)
	}
	return q.view(ctx, op, o)
}

// ListOrders lists the member's orders, or every order when memberID is 0.
func (q *Query) ListOrders(ctx context.Context, memberID int64) ([]OrderView, error) {
	const op = "order.List"
	var (
		orders []domain.Order
		err    error
	)
	if memberID > 0 {
		orders, err = q.orders.ListByMember(ctx, memberID)
	} else {
		orders, err = q.orders.List(ctx)
	}
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		v, err := q.view(ctx, op, o)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (q *Query) view(ctx context.Context, op string, o domain.Order) (OrderView, error) {
	v := OrderView{
		ID:          o.ID,
		MemberID:    o.MemberID,
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
		Items:       make([]OrderItemView, 0, len(o.Items)),
		CreatedAt:   o.CreatedAt,
	}
	m, err := q.members.Get(ctx, o.MemberID)
	switch {
	case err == nil:
		v.MemberName = m.Name
	case !errors.Is(err, memberdomain.ErrMemberNotFound):
		return OrderView{}, apperr.Internal(op, err)
	}

	names := make(map[int64]string)
	for _, it := range o.Items {
		name, ok := names[it.ProductID]
		if !ok {
			p, err := q.products.Get(ctx, it.ProductID)
			if err != nil {
				return OrderView{}, apperr.Internal(op, err)
			}
			name = p.Name
			names[it.ProductID] = name
		}
		v.Items = append(v.Items, OrderItemView{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: name,
			Quantity:    it.Quantity,
			Price:       it.Price,
			Amount:      it.Amount,
		})
	}
	return v, nil
}
