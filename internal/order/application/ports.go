package application

import (
	"context"

	memberdomain "github.com/dmehra2102/ordersystem/internal/member/domain"
	"github.com/dmehra2102/ordersystem/internal/order/domain"
	productdomain "github.com/dmehra2102/ordersystem/internal/product/domain"
)

type OrderRepository interface {
	// Create assigns IDs to the order and its items.
	Create(ctx context.Context, o *domain.Order) error
	// Get loads the order with its items, locking it when ctx carries a
	// transaction.
	Get(ctx context.Context, id int64) (domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByMember(ctx context.Context, memberID int64) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, o domain.Order) error
	// Delete removes the order together with its items and payment.
	Delete(ctx context.Context, id int64) error
}

type MemberReader interface {
	Get(ctx context.Context, id int64) (memberdomain.Member, error)
}

type ProductReader interface {
	Get(ctx context.Context, id int64) (productdomain.Product, error)
}

// ProductRepository is the stock side of the product store.
type ProductRepository interface {
	ProductReader
	Update(ctx context.Context, p productdomain.Product) error
}

type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
