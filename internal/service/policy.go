package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"account-service/internal/domain"
)

type TokenVerifier interface {
	Parse(token string) (subject string, err error)
}

// Policy turns bearer tokens into users and answers access questions about them.
type Policy struct {
	tokens TokenVerifier
	users  domain.UserRepository
}

func NewPolicy(tokens TokenVerifier, users domain.UserRepository) *Policy {
	return &Policy{tokens: tokens, users: users}
}

// RequireAuthenticated verifies token and loads its subject.
// Token failures of any kind are reported as domain.ErrForbidden.
func (p *Policy) RequireAuthenticated(ctx context.Context, token string) (*domain.User, error) {
	sub, err := p.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrForbidden, err)
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrForbidden, domain.ErrInvalidToken)
	}
	u, err := p.users.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (p *Policy) RequireSuperuser(u *domain.User) error {
	if u == nil || !u.IsSuperuser {
		return fmt.Errorf("the user doesn't have enough privileges: %w", domain.ErrForbidden)
	}
	return nil
}

func (p *Policy) CanView(actor, target *domain.User) bool {
	if actor == nil || target == nil {
		return false
	}
	return actor.ID == target.ID || actor.IsSuperuser
}
