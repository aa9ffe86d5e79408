package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account-service/internal/domain"
)

func TestRequireAuthenticated(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "a@example.com", false)
	ctx := context.Background()

	tok, _, err := f.jwt.Issue("1")
	require.NoError(t, err)
	got, err := f.policy.RequireAuthenticated(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestRequireAuthenticated_BadTokens(t *testing.T) {
	f := newFixture(t)
	f.register(t, "a@example.com", false)
	ctx := context.Background()

	expired, _, err := f.jwt.IssueTTL("1", -time.Minute)
	require.NoError(t, err)
	_, err = f.policy.RequireAuthenticated(ctx, expired)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, err, domain.ErrExpiredToken)

	_, err = f.policy.RequireAuthenticated(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	notNumeric, _, err := f.jwt.Issue("alice")
	require.NoError(t, err)
	_, err = f.policy.RequireAuthenticated(ctx, notNumeric)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRequireAuthenticated_UnknownSubject(t *testing.T) {
	f := newFixture(t)
	tok, _, err := f.jwt.Issue("42")
	require.NoError(t, err)

	_, err = f.policy.RequireAuthenticated(context.Background(), tok)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrForbidden)
}

func TestRequireSuperuser(t *testing.T) {
	p := NewPolicy(nil, nil)
	assert.NoError(t, p.RequireSuperuser(&domain.User{ID: 1, IsSuperuser: true}))
	assert.ErrorIs(t, p.RequireSuperuser(&domain.User{ID: 2}), domain.ErrForbidden)
	assert.ErrorIs(t, p.RequireSuperuser(nil), domain.ErrForbidden)
}

func TestCanView(t *testing.T) {
	p := NewPolicy(nil, nil)
	root := &domain.User{ID: 1, IsSuperuser: true}
	a := &domain.User{ID: 2}
	b := &domain.User{ID: 3}

	assert.True(t, p.CanView(a, a))
	assert.True(t, p.CanView(root, b))
	assert.False(t, p.CanView(a, b))
	assert.False(t, p.CanView(nil, a))
}
