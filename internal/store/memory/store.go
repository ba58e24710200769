// Package memory keeps every aggregate in process memory. Units of work are
// serialized by a single mutex and run against a private copy of the state
// that replaces the shared one only on commit.
package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	memberdomain "github.com/dmehra2102/ordersystem/internal/member/domain"
	orderdomain "github.com/dmehra2102/ordersystem/internal/order/domain"
	paymentdomain "github.com/dmehra2102/ordersystem/internal/payment/domain"
	productdomain "github.com/dmehra2102/ordersystem/internal/product/domain"
	"github.com/dmehra2102/ordersystem/pkg/outbox"
)

type txKey struct{}

// unit is the working state of one open unit of work.
type unit struct {
	owner *Store
	st    state
}

type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	st   state
}

type state struct {
	members  map[int64]memberdomain.Member
	products map[int64]productdomain.Product
	orders   map[int64]orderdomain.Order
	payments map[int64]paymentdomain.Payment
	events   []outbox.Event
	seq      sequences
}

type sequences struct {
	member, product, order, item, payment, event int64
}

func New() *Store {
	return &Store{st: state{
		members:  map[int64]memberdomain.Member{},
		products: map[int64]productdomain.Product{},
		orders:   map[int64]orderdomain.Order{},
		payments: map[int64]paymentdomain.Payment{},
	}}
}

func (s *Store) Members() *Members   { return &Members{s: s} }
func (s *Store) Products() *Products { return &Products{s: s} }
func (s *Store) Orders() *Orders     { return &Orders{s: s} }
func (s *Store) Payments() *Payments { return &Payments{s: s} }
func (s *Store) Outbox() *Outbox     { return &Outbox{s: s} }

func (s *Store) Ping(context.Context) error { return nil }

// RunInTx runs fn as one unit of work. A nested call joins the outer unit.
// Nothing fn writes is visible outside the unit until fn returns nil.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.unit(ctx) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	u := &unit{owner: s, st: s.st.clone()}
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, u)); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = u.st
	s.mu.Unlock()
	return nil
}

func (s *Store) unit(ctx context.Context) *unit {
	u, _ := ctx.Value(txKey{}).(*unit)
	if u == nil || u.owner != s {
		return nil
	}
	return u
}

// write applies fn to the unit's working state, or to the shared state under
// both locks when ctx carries no unit of work.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if u := s.unit(ctx); u != nil {
		return fn(&u.st)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.st)
}

// read sees the unit's own writes inside a unit of work and only committed
// state outside one.
func (s *Store) read(ctx context.Context, fn func(st *state)) {
	if u := s.unit(ctx); u != nil {
		fn(&u.st)
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.st)
}

func (st state) clone() state {
	orders := make(map[int64]orderdomain.Order, len(st.orders))
	for id, o := range st.orders {
		orders[id] = cloneOrder(o)
	}
	return state{
		members:  maps.Clone(st.members),
		products: maps.Clone(st.products),
		orders:   orders,
		payments: maps.Clone(st.payments),
		events:   slices.Clone(st.events),
		seq:      st.seq,
	}
}

func cloneOrder(o orderdomain.Order) orderdomain.Order {
	o.Items = slices.Clone(o.Items)
	return o
}

// sortedValues returns the map's values ordered by key.
func sortedValues[V any](m map[int64]V) []V {
	out := make([]V, 0, len(m))
	for _, id := range slices.SortedFunc(maps.Keys(m), cmp.Compare[int64]) {
		out = append(out, m[id])
	}
	return out
}
