package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"account-service/internal/domain"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 100

	// bcrypt only digests the first 72 bytes
	MaxPasswordBytes = 72
)

type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) bool
}

// AccountService orchestrates registration, authentication and profile management.
// Authorization is delegated to Policy before the store is touched.
type AccountService struct {
	users  domain.UserRepository
	hasher PasswordHasher
	policy *Policy
	log    *zap.Logger
}

func NewAccountService(users domain.UserRepository, hasher PasswordHasher, policy *Policy, l *zap.Logger) *AccountService {
	if l == nil {
		l = zap.NewNop()
	}
	return &AccountService{users: users, hasher: hasher, policy: policy, log: l}
}

// Register creates a user. A duplicate email, found either before the insert or by the
// store's unique index, is domain.ErrDuplicateEmail.
func (s *AccountService) Register(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	if in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, in.Email, 0); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.Insert(ctx, domain.NewUserRecord{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		IsSuperuser:  in.IsSuperuser,
	})
	if errors.Is(err, domain.ErrConflict) {
		return nil, domain.ErrDuplicateEmail
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	s.log.Info("user registered", zap.Uint64("user_id", u.ID), zap.Bool("superuser", u.IsSuperuser))
	return u, nil
}

// SignUp is public self-registration; it can never create a superuser.
func (s *AccountService) SignUp(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	in.IsSuperuser = false
	return s.Register(ctx, in)
}

// CreateUser is the administrative create.
func (s *AccountService) CreateUser(ctx context.Context, actor *domain.User, in domain.NewUser) (*domain.User, error) {
	if err := s.policy.RequireSuperuser(actor); err != nil {
		return nil, err
	}
	return s.Register(ctx, in)
}

// Authenticate returns nil without error when the email is unknown or the password is wrong.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(ctx, password, u.PasswordHash) {
		return nil, nil
	}
	return u, nil
}

func (s *AccountService) UpdateSelf(ctx context.Context, actor *domain.User, patch domain.ProfilePatch) (*domain.User, error) {
	if actor == nil {
		return nil, domain.ErrForbidden
	}
	return s.apply(ctx, actor.ID, domain.UserPatch{ProfilePatch: patch})
}

func (s *AccountService) AdminUpdate(ctx context.Context, actor *domain.User, targetID uint64, patch domain.UserPatch) (*domain.User, error) {
	if err := s.policy.RequireSuperuser(actor); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		return nil, err
	}
	return s.apply(ctx, targetID, patch)
}

func (s *AccountService) GetByID(ctx context.Context, actor *domain.User, targetID uint64) (*domain.User, error) {
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanView(actor, target) {
		return nil, fmt.Errorf("the user doesn't have enough privileges: %w", domain.ErrForbidden)
	}
	return target, nil
}

func (s *AccountService) List(ctx context.Context, actor *domain.User, skip, limit int) ([]domain.User, error) {
	if err := s.policy.RequireSuperuser(actor); err != nil {
		return nil, err
	}
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.users.List(ctx, skip, limit)
}

// EnsureSuperuser creates email as a superuser, or promotes and re-keys an existing account.
func (s *AccountService) EnsureSuperuser(ctx context.Context, in domain.NewUser) (*domain.User, bool, error) {
	in.IsSuperuser = true
	existing, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, domain.ErrNotFound) {
		u, err := s.Register(ctx, in)
		return u, true, err
	}
	if err != nil {
		return nil, false, err
	}
	yes := true
	patch := domain.UserPatch{IsSuperuser: &yes}
	if in.Password != "" {
		patch.Password = &in.Password
	}
	if in.Name != "" {
		patch.Name = &in.Name
	}
	u, err := s.apply(ctx, existing.ID, patch)
	return u, false, err
}

// apply projects a patch into store changes. The plaintext password is hashed here and
// never handed to the store.
func (s *AccountService) apply(ctx context.Context, id uint64, patch domain.UserPatch) (*domain.User, error) {
	var ch domain.UserChanges
	if patch.Email != nil {
		if *patch.Email == "" {
			return nil, fmt.Errorf("%w: email must not be empty", domain.ErrValidation)
		}
		if err := s.ensureEmailFree(ctx, *patch.Email, id); err != nil {
			return nil, err
		}
		ch.Email = patch.Email
	}
	if patch.Password != nil {
		if *patch.Password == "" {
			return nil, fmt.Errorf("%w: password must not be empty", domain.ErrValidation)
		}
		if err := checkPassword(*patch.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(ctx, *patch.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		ch.PasswordHash = &hash
	}
	ch.Name = patch.Name
	ch.IsSuperuser = patch.IsSuperuser

	u, err := s.users.UpdateFields(ctx, id, ch)
	if errors.Is(err, domain.ErrConflict) {
		return nil, domain.ErrDuplicateEmail
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// checkPassword bounds the encoded length; binding's max counts runes, not bytes.
func checkPassword(pw string) error {
	if len(pw) > MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, MaxPasswordBytes)
	}
	return nil
}

// ensureEmailFree fails with ErrDuplicateEmail if email belongs to a user other than owner.
func (s *AccountService) ensureEmailFree(ctx context.Context, email string, owner uint64) error {
	u, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case u.ID != owner:
		return domain.ErrDuplicateEmail
	}
	return nil
}
