package application

import (
	"context"

	"github.com/dmehra2102/ordersystem/internal/member/domain"
)

type MemberRepository interface {
	// Create assigns m.ID. It returns domain.ErrDuplicateEmail when the
	// email is already registered.
	Create(ctx context.Context, m *domain.Member) error
	Get(ctx context.Context, id int64) (domain.Member, error)
	List(ctx context.Context) ([]domain.Member, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, m domain.Member) error
	Delete(ctx context.Context, id int64) error
}

// OrderLookup tells whether a member still owns orders.
type OrderLookup interface {
	ExistsByMember(ctx context.Context, memberID int64) (bool, error)
}

type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
