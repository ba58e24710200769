package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dmehra2102/ordersystem/internal/member/domain"
)

type Members struct{ db *DB }

const memberColumns = `id, name, email, phone, address, created_at, updated_at`

func (r *Members) Create(ctx context.Context, m *domain.Member) error {
	err := r.db.q(ctx).QueryRow(ctx, `
		INSERT INTO members (name, email, phone, address, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id`,
		m.Name, m.Email, m.Phone, m.Address, m.CreatedAt, m.UpdatedAt).Scan(&m.ID)
	if isUniqueViolation(err, "members_email_key") {
		return domain.ErrDuplicateEmail
	}
	return err
}

func (r *Members) Get(ctx context.Context, id int64) (domain.Member, error) {
	row := r.db.q(ctx).QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id=$1`+forUpdate(ctx), id)
	m, err := scanMember(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Member{}, domain.ErrMemberNotFound
	}
	return m, err
}

func (r *Members) List(ctx context.Context) ([]domain.Member, error) {
	rows, err := r.db.q(ctx).Query(ctx, `SELECT `+memberColumns+` FROM members ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Members) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.q(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM members WHERE lower(email)=lower($1))`, email).Scan(&exists)
	return exists, err
}

func (r *Members) Update(ctx context.Context, m domain.Member) error {
	ct, err := r.db.q(ctx).Exec(ctx, `UPDATE members SET name=$2, phone=$3, address=$4, updated_at=$5 WHERE id=$1`,
		m.ID, m.Name, m.Phone, m.Address, m.UpdatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

func (r *Members) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.q(ctx).Exec(ctx, `DELETE FROM members WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

func scanMember(row pgx.Row) (domain.Member, error) {
	var m domain.Member
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Address, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}
