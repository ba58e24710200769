package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dmehra2102/ordersystem/internal/payment/domain"
)

type Payments struct{ db *DB }

const paymentColumns = `id, order_id, amount, method, status, transaction_id, created_at, updated_at`

// Create inserts p. A clashing transaction id is skipped rather than raised so
// the surrounding transaction stays usable for a retry with a fresh id.
func (r *Payments) Create(ctx context.Context, p *domain.Payment) error {
	err := r.db.q(ctx).QueryRow(ctx, `
		INSERT INTO payments (order_id, amount, method, status, transaction_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (transaction_id) DO NOTHING
		RETURNING id`,
		p.OrderID, p.Amount, p.Method, p.Status, p.TransactionID, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.ErrDuplicateTxnID
	case isUniqueViolation(err, "payments_order_id_key"):
		return domain.ErrDuplicatePayment
	}
	return err
}

func (r *Payments) Get(ctx context.Context, id int64) (domain.Payment, error) {
	return r.one(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=$1`+forUpdate(ctx), id)
}

func (r *Payments) GetByOrder(ctx context.Context, orderID int64) (domain.Payment, error) {
	return r.one(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id=$1`+forUpdate(ctx), orderID)
}

func (r *Payments) List(ctx context.Context) ([]domain.Payment, error) {
	rows, err := r.db.q(ctx).Query(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Payments) ExistsByOrder(ctx context.Context, orderID int64) (bool, error) {
	var exists bool
	err := r.db.q(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM payments WHERE order_id=$1)`, orderID).Scan(&exists)
	return exists, err
}

func (r *Payments) Update(ctx context.Context, p domain.Payment) error {
	ct, err := r.db.q(ctx).Exec(ctx, `UPDATE payments SET amount=$2, status=$3, updated_at=$4 WHERE id=$1`,
		p.ID, p.Amount, p.Status, p.UpdatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

func (r *Payments) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.q(ctx).Exec(ctx, `DELETE FROM payments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

func (r *Payments) one(ctx context.Context, sql string, arg int64) (domain.Payment, error) {
	p, err := scanPayment(r.db.q(ctx).QueryRow(ctx, sql, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	return p, err
}

func scanPayment(row pgx.Row) (domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(&p.ID, &p.OrderID, &p.Amount, &p.Method, &p.Status, &p.TransactionID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
