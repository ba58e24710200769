package application

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/ordersystem/internal/member/domain"
	"github.com/dmehra2102/ordersystem/pkg/apperr"
)

type Service struct {
	log     *slog.Logger
	uow     UnitOfWork
	members MemberRepository
	orders  OrderLookup
	tracer  trace.Tracer
}

func NewService(log *slog.Logger, uow UnitOfWork, members MemberRepository, orders OrderLookup) *Service {
	return &Service{
		log:     log,
		uow:     uow,
		members: members,
		orders:  orders,
		tracer:  otel.Tracer("member-service"),
	}
}

type CreateMemberInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

func (s *Service) CreateMember(ctx context.Context, in CreateMemberInput) (int64, error) {
	const op = "member.Create"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	m, err := domain.NewMember(domain.NewMemberParams(in))
	if err != nil {
		return 0, apperr.InvalidArgument(op, err, "%s", err.Error())
	}

	err = s.uow.RunInTx(ctx, func(ctx context.Context) error {
		exists, err := s.members.ExistsByEmail(ctx, m.Email)
		if err != nil {
			return apperr.Internal(op, err)
		}
		if exists {
			return apperr.InvalidArgument(op, domain.ErrDuplicateEmail, "email %s is already registered", m.Email)
		}
		if err := s.members.Create(ctx, &m); err != nil {
			if errors.Is(err, domain.ErrDuplicateEmail) {
				return apperr.InvalidArgument(op, err, "email %s is already registered", m.Email)
			}
			return apperr.Internal(op, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("member created", "member_id", m.ID)
	return m.ID, nil
}

type UpdateMemberInput struct {
	Name    string
	Phone   string
	Address string
}

func (s *Service) UpdateMember(ctx context.Context, id int64, in UpdateMemberInput) error {
	const op = "member.Update"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	return s.uow.RunInTx(ctx, func(ctx context.Context) error {
		m, err := s.get(ctx, op, id)
		if err != nil {
			return err
		}
		if err := m.Update(in.Name, in.Phone, in.Address); err != nil {
			return apperr.InvalidArgument(op, err, "%s", err.Error())
		}
		if err := s.members.Update(ctx, m); err != nil {
			return apperr.Internal(op, err)
		}
		return nil
	})
}

// DeleteMember refuses to orphan orders.
func (s *Service) DeleteMember(ctx context.Context, id int64) error {
	const op = "member.Delete"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.get(ctx, op, id); err != nil {
			return err
		}
		owns, err := s.orders.ExistsByMember(ctx, id)
		if err != nil {
			return apperr.Internal(op, err)
		}
		if owns {
			return apperr.InvalidState(op, domain.ErrMemberHasOrders, "member %d still has orders", id)
		}
		if err := s.members.Delete(ctx, id); err != nil {
			return apperr.Internal(op, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("member deleted", "member_id", id)
	return nil
}

func (s *Service) get(ctx context.Context, op string, id int64) (domain.Member, error) {
	m, err := s.members.Get(ctx, id)
	if errors.Is(err, domain.ErrMemberNotFound) {
		return domain.Member{}, apperr.NotFound(op, err, "member %d not found", id)
	}
	if err != nil {
		return domain.Member{}, apperr.Internal(op, err)
	}
	return m, nil
}
