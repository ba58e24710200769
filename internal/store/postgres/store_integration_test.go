//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	memberapp "github.com/dmehra2102/ordersystem/internal/member/application"
	orderapp "github.com/dmehra2102/ordersystem/internal/order/application"
	orderdomain "github.com/dmehra2102/ordersystem/internal/order/domain"
	paymentapp "github.com/dmehra2102/ordersystem/internal/payment/application"
	paymentdomain "github.com/dmehra2102/ordersystem/internal/payment/domain"
	productapp "github.com/dmehra2102/ordersystem/internal/product/application"
	"github.com/dmehra2102/ordersystem/internal/store/postgres"
	"github.com/dmehra2102/ordersystem/internal/testutil"
	"github.com/dmehra2102/ordersystem/pkg/apperr"
	"github.com/dmehra2102/ordersystem/pkg/logging"
)

type services struct {
	db       *postgres.DB
	members  *memberapp.Service
	products *productapp.Service
	orders   *orderapp.Service
	payments *paymentapp.Service
}

func setup(t *testing.T) services {
	t.Helper()
	ctx := context.Background()
	log := logging.Discard()

	db, err := postgres.Open(ctx, log, testutil.Postgres(t))
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx), "migration must be repeatable")

	orders := orderapp.NewService(log, db, db.Orders(), db.Members(), db.Products(), db.Outbox())
	return services{
		db:       db,
		members:  memberapp.NewService(log, db, db.Members(), db.Orders()),
		products: productapp.NewService(log, db, db.Products(), db.Orders()),
		orders:   orders,
		payments: paymentapp.NewService(log, db, db.Payments(), db.Orders(), orders, db.Outbox()),
	}
}

func TestOrderPaymentLifecycle(t *testing.T) {
	ctx := context.Background()
	s := setup(t)

	memberID, err := s.members.CreateMember(ctx, memberapp.CreateMemberInput{Name: "Kim", Email: "kim@example.com"})
	require.NoError(t, err)
	productID, err := s.products.CreateProduct(ctx, productapp.CreateProductInput{Name: "Lamp", Price: decimal.NewFromInt(10000), Stock: 10})
	require.NoError(t, err)

	orderID, err := s.orders.CreateOrder(ctx, orderapp.CreateOrderInput{
		MemberID: memberID,
		Lines:    []orderapp.OrderLine{{ProductID: productID, Quantity: 2}},
	})
	require.NoError(t, err)

	o, err := s.db.Orders().Get(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(20000)))
	assert.Equal(t, orderdomain.StatusConfirmed, o.Status)
	require.Len(t, o.Items, 1)

	p, err := s.db.Products().Get(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 8, p.Stock)

	paymentID, err := s.payments.ProcessPayment(ctx, orderID, "CARD")
	require.NoError(t, err)
	_, err = s.payments.ProcessPayment(ctx, orderID, "CASH")
	assert.True(t, apperr.IsInvalidArgument(err))

	require.NoError(t, s.payments.CancelPayment(ctx, paymentID))
	pay, err := s.db.Payments().Get(ctx, paymentID)
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.StatusCancelled, pay.Status)

	p, err = s.db.Products().Get(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Stock)

	require.NoError(t, s.orders.DeleteOrder(ctx, orderID))
	_, err = s.db.Payments().Get(ctx, paymentID)
	assert.ErrorIs(t, err, paymentdomain.ErrPaymentNotFound)

	relayed, err := s.db.Outbox().LockBatch(ctx, "it-relay", 100, 0)
	require.NoError(t, err)
	assert.Len(t, relayed, 4) // created, completed, cancelled, deleted
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	ctx := context.Background()
	s := setup(t)

	memberID, err := s.members.CreateMember(ctx, memberapp.CreateMemberInput{Name: "Lee", Email: "lee@example.com"})
	require.NoError(t, err)
	productID, err := s.products.CreateProduct(ctx, productapp.CreateProductInput{Name: "Mug", Price: decimal.NewFromInt(3000), Stock: 5})
	require.NoError(t, err)

	var g errgroup.Group
	results := make([]error, 10)
	for i := range results {
		g.Go(func() error {
			_, results[i] = s.orders.CreateOrder(ctx, orderapp.CreateOrderInput{
				MemberID: memberID,
				Lines:    []orderapp.OrderLine{{ProductID: productID, Quantity: 1}},
			})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperr.IsInvalidArgument(err), err)
	}
	assert.Equal(t, 5, succeeded)

	p, err := s.db.Products().Get(ctx, productID)
	require.NoError(t, err)
	assert.Zero(t, p.Stock)
}

func TestCrossOrderedOrdersDoNotDeadlock(t *testing.T) {
	ctx := context.Background()
	s := setup(t)

	memberID, err := s.members.CreateMember(ctx, memberapp.CreateMemberInput{Name: "Park", Email: "park@example.com"})
	require.NoError(t, err)
	a, err := s.products.CreateProduct(ctx, productapp.CreateProductInput{Name: "Pen", Price: decimal.NewFromInt(1000), Stock: 100})
	require.NoError(t, err)
	b, err := s.products.CreateProduct(ctx, productapp.CreateProductInput{Name: "Ink", Price: decimal.NewFromInt(2000), Stock: 100})
	require.NoError(t, err)

	var g errgroup.Group
	results := make([]error, 20)
	for i := range results {
		lines := []orderapp.OrderLine{{ProductID: a, Quantity: 1}, {ProductID: b, Quantity: 1}}
		if i%2 == 1 {
			lines[0], lines[1] = lines[1], lines[0]
		}
		g.Go(func() error {
			_, results[i] = s.orders.CreateOrder(ctx, orderapp.CreateOrderInput{MemberID: memberID, Lines: lines})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, err := range results {
		require.NoError(t, err)
	}
	for _, id := range []int64{a, b} {
		p, err := s.db.Products().Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 80, p.Stock)
	}
}

func TestPaymentTransactionIDClashKeepsTxUsable(t *testing.T) {
	ctx := context.Background()
	s := setup(t)

	memberID, err := s.members.CreateMember(ctx, memberapp.CreateMemberInput{Name: "Choi", Email: "choi@example.com"})
	require.NoError(t, err)
	productID, err := s.products.CreateProduct(ctx, productapp.CreateProductInput{Name: "Cup", Price: decimal.NewFromInt(1500), Stock: 5})
	require.NoError(t, err)
	line := []orderapp.OrderLine{{ProductID: productID, Quantity: 1}}
	first, err := s.orders.CreateOrder(ctx, orderapp.CreateOrderInput{MemberID: memberID, Lines: line})
	require.NoError(t, err)
	second, err := s.orders.CreateOrder(ctx, orderapp.CreateOrderInput{MemberID: memberID, Lines: line})
	require.NoError(t, err)

	paid := paymentdomain.NewPayment(first, decimal.NewFromInt(1500), paymentdomain.MethodCard)
	require.NoError(t, s.db.Payments().Create(ctx, &paid))

	err = s.db.RunInTx(ctx, func(ctx context.Context) error {
		p := paymentdomain.NewPayment(second, decimal.NewFromInt(1500), paymentdomain.MethodCash)
		p.TransactionID = paid.TransactionID
		require.ErrorIs(t, s.db.Payments().Create(ctx, &p), paymentdomain.ErrDuplicateTxnID)

		p.TransactionID = paymentdomain.GenerateTransactionID()
		return s.db.Payments().Create(ctx, &p)
	})
	require.NoError(t, err)

	got, err := s.db.Payments().GetByOrder(ctx, second)
	require.NoError(t, err)
	assert.NotEqual(t, paid.TransactionID, got.TransactionID)
}
