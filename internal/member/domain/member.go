package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

var (
	ErrMemberNotFound  = errors.New("member: not found")
	ErrDuplicateEmail  = errors.New("member: email already registered")
	ErrInvalidMember   = errors.New("member: invalid input")
	ErrMemberHasOrders = errors.New("member: has orders")
)

type Member struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type NewMemberParams struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

func NewMember(p NewMemberParams) (Member, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return Member{}, fmt.Errorf("%w: name is required", ErrInvalidMember)
	}
	email, err := normalizeEmail(p.Email)
	if err != nil {
		return Member{}, err
	}
	now := time.Now().UTC()
	return Member{
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(p.Phone),
		Address:   strings.TrimSpace(p.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update changes the mutable profile fields. Email is fixed at registration.
func (m *Member) Update(name, phone, address string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMember)
	}
	m.Name = name
	m.Phone = strings.TrimSpace(phone)
	m.Address = strings.TrimSpace(address)
	m.UpdatedAt = time.Now().UTC()
	return nil
}

func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidMember)
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", fmt.Errorf("%w: email is malformed", ErrInvalidMember)
	}
	return strings.ToLower(addr.Address), nil
}
