package memory

import (
	"context"
	"errors"
	"strings"

	memberdomain "github.com/dmehra2102/ordersystem/internal/member/domain"
	orderdomain "github.com/dmehra2102/ordersystem/internal/order/domain"
	paymentdomain "github.com/dmehra2102/ordersystem/internal/payment/domain"
	productdomain "github.com/dmehra2102/ordersystem/internal/product/domain"
)

type Members struct{ s *Store }

func (r *Members) Create(ctx context.Context, m *memberdomain.Member) error {
	return r.s.write(ctx, func(st *state) error {
		for _, existing := range st.members {
			if strings.EqualFold(existing.Email, m.Email) {
				return memberdomain.ErrDuplicateEmail
			}
		}
		st.seq.member++
		m.ID = st.seq.member
		st.members[m.ID] = *m
		return nil
	})
}

func (r *Members) Get(ctx context.Context, id int64) (memberdomain.Member, error) {
	var (
		m  memberdomain.Member
		ok bool
	)
	r.s.read(ctx, func(st *state) { m, ok = st.members[id] })
	if !ok {
		return memberdomain.Member{}, memberdomain.ErrMemberNotFound
	}
	return m, nil
}

func (r *Members) List(ctx context.Context) ([]memberdomain.Member, error) {
	var out []memberdomain.Member
	r.s.read(ctx, func(st *state) { out = sortedValues(st.members) })
	return out, nil
}

func (r *Members) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	found := false
	r.s.read(ctx, func(st *state) {
		for _, m := range st.members {
			if strings.EqualFold(m.Email, email) {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (r *Members) Update(ctx context.Context, m memberdomain.Member) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.members[m.ID]; !ok {
			return memberdomain.ErrMemberNotFound
		}
		st.members[m.ID] = m
		return nil
	})
}

func (r *Members) Delete(ctx context.Context, id int64) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.members[id]; !ok {
			return memberdomain.ErrMemberNotFound
		}
		delete(st.members, id)
		return nil
	})
}

type Products struct{ s *Store }

func (r *Products) Create(ctx context.Context, p *productdomain.Product) error {
	return r.s.write(ctx, func(st *state) error {
		st.seq.product++
		p.ID = st.seq.product
		st.products[p.ID] = *p
		return nil
	})
}

func (r *Products) Get(ctx context.Context, id int64) (productdomain.Product, error) {
	var (
		p  productdomain.Product
		ok bool
	)
	r.s.read(ctx, func(st *state) { p, ok = st.products[id] })
	if !ok {
		return productdomain.Product{}, productdomain.ErrProductNotFound
	}
	return p, nil
}

func (r *Products) List(ctx context.Context) ([]productdomain.Product, error) {
	var out []productdomain.Product
	r.s.read(ctx, func(st *state) { out = sortedValues(st.products) })
	return out, nil
}

// Update stores p. A negative stock is refused the way the database CHECK
// constraint refuses it.
func (r *Products) Update(ctx context.Context, p productdomain.Product) error {
	if p.Stock < 0 {
		return productdomain.ErrInsufficientStock
	}
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.products[p.ID]; !ok {
			return productdomain.ErrProductNotFound
		}
		st.products[p.ID] = p
		return nil
	})
}

func (r *Products) Delete(ctx context.Context, id int64) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return productdomain.ErrProductNotFound
		}
		delete(st.products, id)
		return nil
	})
}

type Orders struct{ s *Store }

func (r *Orders) Create(ctx context.Context, o *orderdomain.Order) error {
	return r.s.write(ctx, func(st *state) error {
		st.seq.order++
		o.ID = st.seq.order
		for i := range o.Items {
			st.seq.item++
			o.Items[i].ID = st.seq.item
			o.Items[i].OrderID = o.ID
		}
		st.orders[o.ID] = cloneOrder(*o)
		return nil
	})
}

func (r *Orders) Get(ctx context.Context, id int64) (orderdomain.Order, error) {
	var (
		o  orderdomain.Order
		ok bool
	)
	r.s.read(ctx, func(st *state) {
		o, ok = st.orders[id]
		o = cloneOrder(o)
	})
	if !ok {
		return orderdomain.Order{}, orderdomain.ErrOrderNotFound
	}
	return o, nil
}

func (r *Orders) List(ctx context.Context) ([]orderdomain.Order, error) {
	var out []orderdomain.Order
	r.s.read(ctx, func(st *state) {
		for _, o := range sortedValues(st.orders) {
			out = append(out, cloneOrder(o))
		}
	})
	return out, nil
}

func (r *Orders) ListByMember(ctx context.Context, memberID int64) ([]orderdomain.Order, error) {
	var out []orderdomain.Order
	r.s.read(ctx, func(st *state) {
		for _, o := range sortedValues(st.orders) {
			if o.MemberID == memberID {
				out = append(out, cloneOrder(o))
			}
		}
	})
	return out, nil
}

func (r *Orders) UpdateStatus(ctx context.Context, o orderdomain.Order) error {
	return r.s.write(ctx, func(st *state) error {
		stored, ok := st.orders[o.ID]
		if !ok {
			return orderdomain.ErrOrderNotFound
		}
		stored.Status = o.Status
		stored.UpdatedAt = o.UpdatedAt
		st.orders[o.ID] = stored
		return nil
	})
}

// Delete removes the order, its items and its payment.
func (r *Orders) Delete(ctx context.Context, id int64) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.orders[id]; !ok {
			return orderdomain.ErrOrderNotFound
		}
		delete(st.orders, id)
		for pid, p := range st.payments {
			if p.OrderID == id {
				delete(st.payments, pid)
			}
		}
		return nil
	})
}

func (r *Orders) ExistsByMember(ctx context.Context, memberID int64) (bool, error) {
	found := false
	r.s.read(ctx, func(st *state) {
		for _, o := range st.orders {
			if o.MemberID == memberID {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (r *Orders) ExistsByProduct(ctx context.Context, productID int64) (bool, error) {
	found := false
	r.s.read(ctx, func(st *state) {
		for _, o := range st.orders {
			for _, it := range o.Items {
				if it.ProductID == productID {
					found = true
					return
				}
			}
		}
	})
	return found, nil
}

type Payments struct{ s *Store }

func (r *Payments) Create(ctx context.Context, p *paymentdomain.Payment) error {
	return r.s.write(ctx, func(st *state) error {
		for _, existing := range st.payments {
			if existing.OrderID == p.OrderID {
				return paymentdomain.ErrDuplicatePayment
			}
			if existing.TransactionID == p.TransactionID {
				return paymentdomain.ErrDuplicateTxnID
			}
		}
		st.seq.payment++
		p.ID = st.seq.payment
		st.payments[p.ID] = *p
		return nil
	})
}

func (r *Payments) Get(ctx context.Context, id int64) (paymentdomain.Payment, error) {
	var (
		p  paymentdomain.Payment
		ok bool
	)
	r.s.read(ctx, func(st *state) { p, ok = st.payments[id] })
	if !ok {
		return paymentdomain.Payment{}, paymentdomain.ErrPaymentNotFound
	}
	return p, nil
}

func (r *Payments) GetByOrder(ctx context.Context, orderID int64) (paymentdomain.Payment, error) {
	var (
		p     paymentdomain.Payment
		found bool
	)
	r.s.read(ctx, func(st *state) {
		for _, existing := range st.payments {
			if existing.OrderID == orderID {
				p, found = existing, true
				return
			}
		}
	})
	if !found {
		return paymentdomain.Payment{}, paymentdomain.ErrPaymentNotFound
	}
	return p, nil
}

func (r *Payments) List(ctx context.Context) ([]paymentdomain.Payment, error) {
	var out []paymentdomain.Payment
	r.s.read(ctx, func(st *state) { out = sortedValues(st.payments) })
	return out, nil
}

func (r *Payments) ExistsByOrder(ctx context.Context, orderID int64) (bool, error) {
	_, err := r.GetByOrder(ctx, orderID)
	if errors.Is(err, paymentdomain.ErrPaymentNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *Payments) Update(ctx context.Context, p paymentdomain.Payment) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.payments[p.ID]; !ok {
			return paymentdomain.ErrPaymentNotFound
		}
		st.payments[p.ID] = p
		return nil
	})
}

func (r *Payments) Delete(ctx context.Context, id int64) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.payments[id]; !ok {
			return paymentdomain.ErrPaymentNotFound
		}
		delete(st.payments, id)
		return nil
	})
}
