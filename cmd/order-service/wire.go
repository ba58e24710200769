package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmehra2102/ordersystem/internal/health"
	memberapp "github.com/dmehra2102/ordersystem/internal/member/application"
	memberhttp "github.com/dmehra2102/ordersystem/internal/member/infrastructure/http"
	orderapp "github.com/dmehra2102/ordersystem/internal/order/application"
	orderhttp "github.com/dmehra2102/ordersystem/internal/order/infrastructure/http"
	paymentapp "github.com/dmehra2102/ordersystem/internal/payment/application"
	paymentdomain "github.com/dmehra2102/ordersystem/internal/payment/domain"
	paymenthttp "github.com/dmehra2102/ordersystem/internal/payment/infrastructure/http"
	productapp "github.com/dmehra2102/ordersystem/internal/product/application"
	producthttp "github.com/dmehra2102/ordersystem/internal/product/infrastructure/http"
	"github.com/dmehra2102/ordersystem/internal/store/memory"
	"github.com/dmehra2102/ordersystem/internal/store/postgres"
	"github.com/dmehra2102/ordersystem/pkg/config"
	"github.com/dmehra2102/ordersystem/pkg/outbox"
	"github.com/dmehra2102/ordersystem/pkg/tracing"
)

type orderStore interface {
	orderapp.OrderRepository
	ExistsByMember(ctx context.Context, memberID int64) (bool, error)
	ExistsByProduct(ctx context.Context, productID int64) (bool, error)
}

type paymentStore interface {
	paymentapp.PaymentRepository
	List(ctx context.Context) ([]paymentdomain.Payment, error)
}

type outboxStore interface {
	outbox.Recorder
	outbox.Store
}

// backend is whichever store the config selected, seen through the ports the
// services need.
type backend struct {
	uow      orderapp.UnitOfWork
	pinger   health.Pinger
	members  memberapp.MemberRepository
	products productapp.ProductRepository
	orders   orderStore
	payments paymentStore
	outbox   outboxStore
	close    func()
}

func openBackend(ctx context.Context, log *slog.Logger, cfg config.Config) (*backend, error) {
	switch cfg.Store {
	case config.StoreMemory:
		s := memory.New()
		log.Warn("using in-memory store, data is lost on exit")
		return &backend{
			uow: s, pinger: s,
			members: s.Members(), products: s.Products(), orders: s.Orders(),
			payments: s.Payments(), outbox: s.Outbox(),
			close: func() {},
		}, nil
	case config.StorePostgres:
		db, err := postgres.Open(ctx, log, cfg.PGURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &backend{
			uow: db, pinger: db,
			members: db.Members(), products: db.Products(), orders: db.Orders(),
			payments: db.Payments(), outbox: db.Outbox(),
			close: db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// app holds the services shared by the HTTP routes and the shipment consumer.
type app struct {
	orders   *orderapp.Service
	checker  *health.Checker
	handlers []interface{ Routes(r chi.Router) }
}

func newApp(log *slog.Logger, cfg config.Config, b *backend) *app {
	members := memberapp.NewService(log, b.uow, b.members, b.orders)
	products := productapp.NewService(log, b.uow, b.products, b.orders)
	orders := orderapp.NewService(log, b.uow, b.orders, b.members, b.products, b.outbox, orderapp.WithStrictTransitions(cfg.StrictOrderTransitions))
	payments := paymentapp.NewService(log, b.uow, b.payments, b.orders, orders, b.outbox)

	return &app{
		orders:  orders,
		checker: health.NewChecker(log, b.pinger),
		handlers: []interface{ Routes(r chi.Router) }{
			memberhttp.NewHandler(log, members, memberapp.NewQuery(b.members)),
			producthttp.NewHandler(log, products, productapp.NewQuery(b.products)),
			orderhttp.NewHandler(log, orders, orderapp.NewQuery(b.orders, b.members, b.products)),
			paymenthttp.NewHandler(log, payments, paymentapp.NewQuery(b.payments)),
		},
	}
}

func (a *app) router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(tracing.Middleware)

	a.checker.Routes(r)
	for _, h := range a.handlers {
		h.Routes(r)
	}
	return r
}
