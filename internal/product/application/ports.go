package application

import (
	"context"

	"github.com/dmehra2102/ordersystem/internal/product/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	// Get locks the row when ctx carries a transaction.
	Get(ctx context.Context, id int64) (domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, p domain.Product) error
	Delete(ctx context.Context, id int64) error
}

// ItemLookup tells whether any order line references a product.
type ItemLookup interface {
	ExistsByProduct(ctx context.Context, productID int64) (bool, error)
}

type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
