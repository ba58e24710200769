package application

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	memberdomain "github.com/dmehra2102/ordersystem/internal/member/domain"
	"github.com/dmehra2102/ordersystem/internal/order/domain"
	productdomain "github.com/dmehra2102/ordersystem/internal/product/domain"
	"github.com/dmehra2102/ordersystem/pkg/apperr"
	"github.com/dmehra2102/ordersystem/pkg/outbox"
)

type Service struct {
	log      *slog.Logger
	uow      UnitOfWork
	orders   OrderRepository
	members  MemberReader
	products ProductRepository
	events   outbox.Recorder
	tracer   trace.Tracer
	strict   bool
}

type Option func(*Service)

// WithStrictTransitions makes UpdateOrderStatus follow the fulfilment
// workflow instead of accepting any known status.
func WithStrictTransitions(strict bool) Option {
	return func(s *Service) { s.strict = strict }
}

func NewService(log *slog.Logger, uow UnitOfWork, orders OrderRepository, members MemberReader, products ProductRepository, events outbox.Recorder, opts ...Option) *Service {
	s := &Service{
		log:      log,
		uow:      uow,
		orders:   orders,
		members:  members,
		products: products,
		events:   events,
		tracer:   otel.Tracer("order-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type OrderLine struct {
	ProductID int64
	Quantity  int
}

type CreateOrderInput struct {
	MemberID int64
	Lines    []OrderLine
}

// CreateOrder reserves stock line by line and stores a CONFIRMED order. Any
// failure leaves every product's stock as it was.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (int64, error) {
	const op = "order.Create"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attribute.Int64("member_id", in.MemberID)))
	defer span.End()

	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			return 0, apperr.InvalidArgument(op, domain.ErrInvalidOrder, "quantity for product %d must be positive", line.ProductID)
		}
	}

	var order domain.Order
	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.members.Get(ctx, in.MemberID); err != nil {
			if errors.Is(err, memberdomain.ErrMemberNotFound) {
				return apperr.NotFound(op, err, "member %d not found", in.MemberID)
			}
			return apperr.Internal(op, err)
		}

		ids := make([]int64, 0, len(in.Lines))
		for _, line := range in.Lines {
			ids = append(ids, line.ProductID)
		}
		// Lines naming the same product share one entry and see each
		// other's reservations.
		products, err := s.lockProducts(ctx, op, ids)
		if err != nil {
			return err
		}

		items := make([]domain.OrderItem, 0, len(in.Lines))
		for _, line := range in.Lines {
			p, ok := products[line.ProductID]
			if !ok {
				return apperr.NotFound(op, productdomain.ErrProductNotFound, "product %d not found", line.ProductID)
			}
			if err := p.DecreaseStock(line.Quantity); err != nil {
				return apperr.InvalidArgument(op, err, "%s", err.Error())
			}
			if err := s.products.Update(ctx, *p); err != nil {
				return apperr.Internal(op, err)
			}
			item, err := domain.NewOrderItem(p.ID, p.Price, line.Quantity)
			if err != nil {
				return apperr.InvalidArgument(op, err, "%s", err.Error())
			}
			items = append(items, item)
		}

		order = domain.NewOrder(in.MemberID, items)
		if err := s.orders.Create(ctx, &order); err != nil {
			return apperr.Internal(op, err)
		}
		return s.record(ctx, op, order.ID, domain.EventOrderCreated, domain.NewOrderCreated(order))
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("order created", "order_id", order.ID, "member_id", order.MemberID, "total", order.TotalAmount.String())
	return order.ID, nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	const op = "order.UpdateStatus"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attribute.Int64("order_id", id)))
	defer span.End()

	target, err := domain.ParseStatus(status)
	if err != nil {
		return apperr.InvalidArgument(op, err, "unknown order status %q", status)
	}

	var from domain.OrderStatus
	err = s.uow.RunInTx(ctx, func(ctx context.Context) error {
		o, err := s.get(ctx, op, id)
		if err != nil {
			return err
		}
		from = o.Status
		if err := o.ChangeStatus(target, s.strict); err != nil {
			return apperr.InvalidState(op, err, "order %d cannot move from %s to %s", id, from, target)
		}
		if err := s.orders.UpdateStatus(ctx, o); err != nil {
			return apperr.Internal(op, err)
		}
		return s.record(ctx, op, id, domain.EventOrderStatusChanged, domain.OrderStatusChanged{OrderID: id, From: from, To: target})
	})
	if err != nil {
		return err
	}
	s.log.Info("order status changed", "order_id", id, "from", from, "to", target)
	return nil
}

// CancelOrder marks the order CANCELLED. Stock comes back only when the
// payment is cancelled.
func (s *Service) CancelOrder(ctx context.Context, id int64) error {
	const op = "order.Cancel"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attribute.Int64("order_id", id)))
	defer span.End()

	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		o, err := s.get(ctx, op, id)
		if err != nil {
			return err
		}
		if err := o.Cancel(); err != nil {
			return apperr.InvalidState(op, err, "already shipped orders cannot be cancelled")
		}
		if err := s.orders.UpdateStatus(ctx, o); err != nil {
			return apperr.Internal(op, err)
		}
		return s.record(ctx, op, id, domain.EventOrderCancelled, domain.OrderCancelled{OrderID: id})
	})
	if err != nil {
		return err
	}
	s.log.Info("order cancelled", "order_id", id)
	return nil
}

// RestoreStock puts every item's quantity back on its product. Calling it
// twice for the same order restores twice.
func (s *Service) RestoreStock(ctx context.Context, o domain.Order) error {
	const op = "order.RestoreStock"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attribute.Int64("order_id", o.ID)))
	defer span.End()

	return s.uow.RunInTx(ctx, func(ctx context.Context) error {
		ids := make([]int64, 0, len(o.Items))
		for _, item := range o.Items {
			ids = append(ids, item.ProductID)
		}
		products, err := s.lockProducts(ctx, op, ids)
		if err != nil {
			return err
		}

		for _, item := range o.Items {
			p, ok := products[item.ProductID]
			if !ok {
				return apperr.NotFound(op, productdomain.ErrProductNotFound, "product %d not found", item.ProductID)
			}
			if err := p.IncreaseStock(item.Quantity); err != nil {
				return apperr.InvalidArgument(op, err, "%s", err.Error())
			}
			if err := s.products.Update(ctx, *p); err != nil {
				return apperr.Internal(op, err)
			}
			s.log.Debug("stock restored", "order_id", o.ID, "product_id", p.ID, "quantity", item.Quantity, "stock", p.Stock)
		}
		return nil
	})
}

func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	const op = "order.Delete"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attribute.Int64("order_id", id)))
	defer span.End()

	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.get(ctx, op, id); err != nil {
			return err
		}
		if err := s.orders.Delete(ctx, id); err != nil {
			return apperr.Internal(op, err)
		}
		return s.record(ctx, op, id, domain.EventOrderDeleted, domain.OrderDeleted{OrderID: id})
	})
	if err != nil {
		return err
	}
	s.log.Info("order deleted", "order_id", id)
	return nil
}

func (s *Service) get(ctx context.Context, op string, id int64) (domain.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if errors.Is(err, domain.ErrOrderNotFound) {
		return domain.Order{}, apperr.NotFound(op, err, "order %d not found", id)
	}
	if err != nil {
		return domain.Order{}, apperr.Internal(op, err)
	}
	return o, nil
}

// lockProducts loads the distinct products in ascending id order, so units of
// work touching the same products take their row locks in the same sequence.
// Missing products are absent from the result.
func (s *Service) lockProducts(ctx context.Context, op string, ids []int64) (map[int64]*productdomain.Product, error) {
	distinct := slices.Clone(ids)
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)

	out := make(map[int64]*productdomain.Product, len(distinct))
	for _, id := range distinct {
		p, err := s.products.Get(ctx, id)
		if errors.Is(err, productdomain.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return nil, apperr.Internal(op, err)
		}
		out[id] = &p
	}
	return out, nil
}

func (s *Service) record(ctx context.Context, op string, orderID int64, eventType string, payload any) error {
	if err := outbox.Record(ctx, s.events, domain.AggregateType, orderID, eventType, payload); err != nil {
		return apperr.Internal(op, err)
	}
	return nil
}
