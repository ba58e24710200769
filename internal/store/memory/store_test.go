package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memberdomain "github.com/dmehra2102/ordersystem/internal/member/domain"
	orderdomain "github.com/dmehra2102/ordersystem/internal/order/domain"
	paymentdomain "github.com/dmehra2102/ordersystem/internal/payment/domain"
	productdomain "github.com/dmehra2102/ordersystem/internal/product/domain"
	"github.com/dmehra2102/ordersystem/pkg/outbox"
)

func seedProduct(t *testing.T, s *Store, stock int) productdomain.Product {
	t.Helper()
	p, err := productdomain.NewProduct(productdomain.NewProductParams{Name: "Desk", Price: decimal.NewFromInt(500), Stock: stock})
	require.NoError(t, err)
	require.NoError(t, s.Products().Create(context.Background(), &p))
	return p
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := seedProduct(t, s, 10)

	boom := errors.New("boom")
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		loaded, err := s.Products().Get(ctx, p.ID)
		require.NoError(t, err)
		require.NoError(t, loaded.DecreaseStock(4))
		require.NoError(t, s.Products().Update(ctx, loaded))
		require.NoError(t, s.Outbox().Append(ctx, outbox.Event{Type: "Reserved"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Products().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)
	assert.Empty(t, s.Outbox().Events())
}

func TestRunInTxHidesUncommittedWrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := seedProduct(t, s, 10)

	reserved := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.RunInTx(ctx, func(ctx context.Context) error {
			loaded, err := s.Products().Get(ctx, p.ID)
			if err != nil {
				return err
			}
			if err := loaded.DecreaseStock(8); err != nil {
				return err
			}
			if err := s.Products().Update(ctx, loaded); err != nil {
				return err
			}
			close(reserved)
			<-release
			return errors.New("line 2 out of stock")
		})
	}()

	<-reserved
	during, err := s.Products().Get(ctx, p.ID)
	require.NoError(t, err)
	listed, err := s.Products().List(ctx)
	require.NoError(t, err)
	close(release)
	require.Error(t, <-done)

	assert.Equal(t, 10, during.Stock)
	require.Len(t, listed, 1)
	assert.Equal(t, 10, listed[0].Stock)

	after, err := s.Products().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, after.Stock)
}

func TestRunInTxPublishesOnCommit(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := seedProduct(t, s, 10)

	err := s.RunInTx(ctx, func(ctx context.Context) error {
		loaded, _ := s.Products().Get(ctx, p.ID)
		require.NoError(t, loaded.DecreaseStock(4))
		require.NoError(t, s.Products().Update(ctx, loaded))

		seen, err := s.Products().Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 6, seen.Stock)

		committed, err := s.Products().Get(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, committed.Stock)
		return nil
	})
	require.NoError(t, err)

	got, err := s.Products().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Stock)
}

func TestRunInTxNestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := seedProduct(t, s, 10)

	err := s.RunInTx(ctx, func(ctx context.Context) error {
		inner := s.RunInTx(ctx, func(ctx context.Context) error {
			loaded, _ := s.Products().Get(ctx, p.ID)
			loaded.Stock = 3
			return s.Products().Update(ctx, loaded)
		})
		require.NoError(t, inner)
		return errors.New("outer fails")
	})
	require.Error(t, err)

	got, _ := s.Products().Get(ctx, p.ID)
	assert.Equal(t, 10, got.Stock, "inner work must roll back with the outer unit")
}

func TestProductsUpdateRefusesNegativeStock(t *testing.T) {
	s := New()
	p := seedProduct(t, s, 1)
	p.Stock = -1
	assert.ErrorIs(t, s.Products().Update(context.Background(), p), productdomain.ErrInsufficientStock)
}

func TestMembersRejectDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := memberdomain.Member{Name: "A", Email: "a@example.com"}
	require.NoError(t, s.Members().Create(ctx, &a))
	assert.Equal(t, int64(1), a.ID)

	b := memberdomain.Member{Name: "B", Email: "A@example.com"}
	assert.ErrorIs(t, s.Members().Create(ctx, &b), memberdomain.ErrDuplicateEmail)

	ok, err := s.Members().ExistsByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOrderDeleteCascadesToPayment(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := seedProduct(t, s, 5)

	item, err := orderdomain.NewOrderItem(p.ID, p.Price, 2)
	require.NoError(t, err)
	o := orderdomain.NewOrder(1, []orderdomain.OrderItem{item})
	require.NoError(t, s.Orders().Create(ctx, &o))
	require.Len(t, o.Items, 1)
	assert.Equal(t, o.ID, o.Items[0].OrderID)

	pay := paymentdomain.NewPayment(o.ID, o.TotalAmount, paymentdomain.MethodCash)
	require.NoError(t, s.Payments().Create(ctx, &pay))
	dup := paymentdomain.NewPayment(o.ID, o.TotalAmount, paymentdomain.MethodCard)
	assert.ErrorIs(t, s.Payments().Create(ctx, &dup), paymentdomain.ErrDuplicatePayment)

	other := orderdomain.NewOrder(1, nil)
	require.NoError(t, s.Orders().Create(ctx, &other))
	clash := paymentdomain.NewPayment(other.ID, other.TotalAmount, paymentdomain.MethodCard)
	clash.TransactionID = pay.TransactionID
	assert.ErrorIs(t, s.Payments().Create(ctx, &clash), paymentdomain.ErrDuplicateTxnID)

	used, err := s.Orders().ExistsByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, used)

	require.NoError(t, s.Orders().Delete(ctx, o.ID))
	_, err = s.Payments().Get(ctx, pay.ID)
	assert.ErrorIs(t, err, paymentdomain.ErrPaymentNotFound)
	_, err = s.Orders().Get(ctx, o.ID)
	assert.ErrorIs(t, err, orderdomain.ErrOrderNotFound)
}

func TestOutboxLifecycle(t *testing.T) {
	ctx := context.Background()
	ob := New().Outbox()
	for _, typ := range []string{"A", "B", "C"} {
		require.NoError(t, ob.Append(ctx, outbox.Event{Type: typ}))
	}

	batch, err := ob.LockBatch(ctx, "relay-1", 2, 0)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "relay-1", batch[0].RelayID)

	require.NoError(t, ob.MarkSent(ctx, []int64{batch[0].ID}))
	require.NoError(t, ob.MarkFailed(ctx, batch[1].ID, "broker down"))

	events := ob.Events()
	assert.Equal(t, outbox.StatusSent, events[0].Status)
	assert.Equal(t, outbox.StatusFailed, events[1].Status)
	assert.Equal(t, 1, events[1].RetryCount)
	assert.Equal(t, outbox.StatusPending, events[2].Status)

	next, err := ob.LockBatch(ctx, "relay-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, "C", next[0].Type)
}
