package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dmehra2102/ordersystem/internal/order/domain"
)

type Orders struct{ db *DB }

const orderColumns = `id, member_id, total_amount, status, created_at, updated_at`

// Create inserts the order and queues its items in one batch.
func (r *Orders) Create(ctx context.Context, o *domain.Order) error {
	q := r.db.q(ctx)
	err := q.QueryRow(ctx, `
		INSERT INTO orders (member_id, total_amount, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`,
		o.MemberID, o.TotalAmount, o.Status, o.CreatedAt, o.UpdatedAt).Scan(&o.ID)
	if err != nil {
		return err
	}

	if len(o.Items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, item := range o.Items {
		batch.Queue(`INSERT INTO order_items (order_id, product_id, quantity, price, amount)
			VALUES ($1,$2,$3,$4,$5)
			RETURNING id`,
			o.ID, item.ProductID, item.Quantity, item.Price, item.Amount)
	}
	br := q.SendBatch(ctx, batch)
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		if err := br.QueryRow().Scan(&o.Items[i].ID); err != nil {
			_ = br.Close()
			return err
		}
	}
	return br.Close()
}

func (r *Orders) Get(ctx context.Context, id int64) (domain.Order, error) {
	row := r.db.q(ctx).QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`+forUpdate(ctx), id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	items, err := r.items(ctx, []int64{id})
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items[id]
	return o, nil
}

func (r *Orders) List(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY id`)
}

func (r *Orders) ListByMember(ctx context.Context, memberID int64) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE member_id=$1 ORDER BY id`, memberID)
}

func (r *Orders) UpdateStatus(ctx context.Context, o domain.Order) error {
	ct, err := r.db.q(ctx).Exec(ctx, `UPDATE orders SET status=$2, updated_at=$3 WHERE id=$1`, o.ID, o.Status, o.UpdatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// Delete relies on ON DELETE CASCADE for order_items and payments.
func (r *Orders) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.q(ctx).Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *Orders) ExistsByMember(ctx context.Context, memberID int64) (bool, error) {
	var exists bool
	err := r.db.q(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE member_id=$1)`, memberID).Scan(&exists)
	return exists, err
}

func (r *Orders) ExistsByProduct(ctx context.Context, productID int64) (bool, error) {
	var exists bool
	err := r.db.q(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM order_items WHERE product_id=$1)`, productID).Scan(&exists)
	return exists, err
}

func (r *Orders) list(ctx context.Context, sql string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	var (
		out []domain.Order
		ids []int64
	)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

func (r *Orders) items(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	rows, err := r.db.q(ctx).Query(ctx, `
		SELECT id, order_id, product_id, quantity, price, amount
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price, &it.Amount); err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.MemberID, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}
