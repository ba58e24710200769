package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/ordersystem/internal/product/domain"
	"github.com/dmehra2102/ordersystem/pkg/apperr"
)

type Service struct {
	log      *slog.Logger
	uow      UnitOfWork
	products ProductRepository
	items    ItemLookup
	tracer   trace.Tracer
}

func NewService(log *slog.Logger, uow UnitOfWork, products ProductRepository, items ItemLookup) *Service {
	return &Service{
		log:      log,
		uow:      uow,
		products: products,
		items:    items,
		tracer:   otel.Tracer("product-service"),
	}
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
}

func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (int64, error) {
	const op = "product.Create"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	p, err := domain.NewProduct(domain.NewProductParams(in))
	if err != nil {
		return 0, apperr.InvalidArgument(op, err, "%s", err.Error())
	}
	if err := s.products.Create(ctx, &p); err != nil {
		return 0, apperr.Internal(op, err)
	}
	s.log.Info("product created", "product_id", p.ID, "stock", p.Stock)
	return p.ID, nil
}

type UpdateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, in UpdateProductInput) error {
	const op = "product.Update"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	return s.uow.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.get(ctx, op, id)
		if err != nil {
			return err
		}
		if err := p.Update(in.Name, in.Description, in.Price); err != nil {
			return apperr.InvalidArgument(op, err, "%s", err.Error())
		}
		if err := s.products.Update(ctx, p); err != nil {
			return apperr.Internal(op, err)
		}
		return nil
	})
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	const op = "product.Delete"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.get(ctx, op, id); err != nil {
			return err
		}
		used, err := s.items.ExistsByProduct(ctx, id)
		if err != nil {
			return apperr.Internal(op, err)
		}
		if used {
			return apperr.InvalidState(op, domain.ErrProductReferenced, "product %d is referenced by orders", id)
		}
		if err := s.products.Delete(ctx, id); err != nil {
			return apperr.Internal(op, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("product deleted", "product_id", id)
	return nil
}

func (s *Service) get(ctx context.Context, op string, id int64) (domain.Product, error) {
	p, err := s.products.Get(ctx, id)
	if errors.Is(err, domain.ErrProductNotFound) {
		return domain.Product{}, apperr.NotFound(op, err, "product %d not found", id)
	}
	if err != nil {
		return domain.Product{}, apperr.Internal(op, err)
	}
	return p, nil
}
