package application

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/ordersystem/internal/product/domain"
	"github.com/dmehra2102/ordersystem/pkg/apperr"
)

type ProductView struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

type ProductReader interface {
	Get(ctx context.Context, id int64) (domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}

type Query struct {
	products ProductReader
}

func NewQuery(products ProductReader) *Query {
	return &Query{products: products}
}

func (q *Query) GetProduct(ctx context.Context, id int64) (ProductView, error) {
	p, err := q.products.Get(ctx, id)
	if errors.Is(err, domain.ErrProductNotFound) {
		return ProductView{}, apperr.NotFound("product.Get", err, "product %d not found", id)
	}
	if err != nil {
		return ProductView{}, apperr.Internal("product.Get", err)
	}
	return toView(p), nil
}

func (q *Query) ListProducts(ctx context.Context) ([]ProductView, error) {
	products, err := q.products.List(ctx)
	if err != nil {
		return nil, apperr.Internal("product.List", err)
	}
	out := make([]ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, toView(p))
	}
	return out, nil
}

func toView(p domain.Product) ProductView {
	return ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
	}
}
