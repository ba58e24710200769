package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dmehra2102/ordersystem/internal/product/domain"
)

type Products struct{ db *DB }

const productColumns = `id, name, description, price, stock, created_at, updated_at`

func (r *Products) Create(ctx context.Context, p *domain.Product) error {
	return r.db.q(ctx).QueryRow(ctx, `
		INSERT INTO products (name, description, price, stock, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id`,
		p.Name, p.Description, p.Price, p.Stock, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
}

func (r *Products) Get(ctx context.Context, id int64) (domain.Product, error) {
	row := r.db.q(ctx).QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`+forUpdate(ctx), id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, err
}

func (r *Products) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.q(ctx).Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update writes every mutable column, stock included. The stock CHECK
// constraint is reported as domain.ErrInsufficientStock.
func (r *Products) Update(ctx context.Context, p domain.Product) error {
	ct, err := r.db.q(ctx).Exec(ctx, `
		UPDATE products SET name=$2, description=$3, price=$4, stock=$5, updated_at=$6
		WHERE id=$1`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.UpdatedAt)
	if isCheckViolation(err) {
		return domain.ErrInsufficientStock
	}
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *Products) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.q(ctx).Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
