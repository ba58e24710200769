package application

import (
	"context"

	orderdomain "github.com/dmehra2102/ordersystem/internal/order/domain"
	"github.com/dmehra2102/ordersystem/internal/payment/domain"
)

type PaymentRepository interface {
	// Create assigns p.ID. It returns domain.ErrDuplicatePayment when the
	// order already has a payment.
	Create(ctx context.Context, p *domain.Payment) error
	Get(ctx context.Context, id int64) (domain.Payment, error)
	GetByOrder(ctx context.Context, orderID int64) (domain.Payment, error)
	ExistsByOrder(ctx context.Context, orderID int64) (bool, error)
	Update(ctx context.Context, p domain.Payment) error
	Delete(ctx context.Context, id int64) error
}

type OrderReader interface {
	Get(ctx context.Context, id int64) (orderdomain.Order, error)
}

// StockRestorer is the order lifecycle operation that returns reserved
// stock to the shelf.
type StockRestorer interface {
	RestoreStock(ctx context.Context, o orderdomain.Order) error
}

type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
