package application

import (
	"context"
	"errors"
	"time"

	"github.com/dmehra2102/ordersystem/internal/member/domain"
	"github.com/dmehra2102/ordersystem/pkg/apperr"
)

type MemberView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
}

type MemberReader interface {
	Get(ctx context.Context, id int64) (domain.Member, error)
	List(ctx context.Context) ([]domain.Member, error)
}

// Query serves read-only member projections.
type Query struct {
	members MemberReader
}

func NewQuery(members MemberReader) *Query {
	return &Query{members: members}
}

func (q *Query) GetMember(ctx context.Context, id int64) (MemberView, error) {
	m, err := q.members.Get(ctx, id)
	if errors.Is(err, domain.ErrMemberNotFound) {
		return MemberView{}, apperr.NotFound("member.Get", err, "member %d not found", id)
	}
	if err != nil {
		return MemberView{}, apperr.Internal("member.Get", err)
	}
	return toView(m), nil
}

func (q *Query) ListMembers(ctx context.Context) ([]MemberView, error) {
	members, err := q.members.List(ctx)
	if err != nil {
		return nil, apperr.Internal("member.List", err)
	}
	out := make([]MemberView, 0, len(members))
	for _, m := range members {
		out = append(out, toView(m))
	}
	return out, nil
}

func toView(m domain.Member) MemberView {
	return MemberView{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Address:   m.Address,
		CreatedAt: m.CreatedAt,
	}
}
