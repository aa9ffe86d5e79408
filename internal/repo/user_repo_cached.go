package repo

import (
	"context"
	"strconv"
	"time"

	"account-service/internal/core/cache"
	"account-service/internal/domain"
)

// cachedUser is the cache wire form. It never carries the password hash.
type cachedUser struct {
	ID          uint64    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CachedUserRepo serves FindByID from Redis and drops the entry around every write to that row.
// Users read through FindByID have an empty PasswordHash; FindByEmail goes to the store.
type CachedUserRepo struct {
	domain.UserRepository
	byID *cache.Typed[cachedUser]
}

var _ domain.UserRepository = (*CachedUserRepo)(nil)

func NewCachedUserRepo(inner domain.UserRepository, c *cache.Cache, ttl time.Duration) *CachedUserRepo {
	return &CachedUserRepo{UserRepository: inner, byID: cache.NewTyped[cachedUser](c, "user:", ttl)}
}

func idKey(id uint64) string { return strconv.FormatUint(id, 10) }

func (r *CachedUserRepo) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	cu, err := r.byID.Get(ctx, idKey(id), func(ctx context.Context) (*cachedUser, error) {
		u, err := r.UserRepository.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &cachedUser{
			ID: u.ID, Email: u.Email, Name: u.Name,
			IsSuperuser: u.IsSuperuser, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	if cu == nil {
		return nil, domain.ErrNotFound
	}
	return &domain.User{
		ID: cu.ID, Email: cu.Email, Name: cu.Name,
		IsSuperuser: cu.IsSuperuser, CreatedAt: cu.CreatedAt, UpdatedAt: cu.UpdatedAt,
	}, nil
}

// 写前写后各删一次：并发读在写入期间回填的旧值会被第二次删除清掉
func (r *CachedUserRepo) UpdateFields(ctx context.Context, id uint64, ch domain.UserChanges) (*domain.User, error) {
	_ = r.byID.Forget(ctx, idKey(id))
	u, err := r.UserRepository.UpdateFields(ctx, id, ch)
	_ = r.byID.Forget(ctx, idKey(id))
	return u, err
}

func (r *CachedUserRepo) Delete(ctx context.Context, id uint64) error {
	_ = r.byID.Forget(ctx, idKey(id))
	err := r.UserRepository.Delete(ctx, id)
	_ = r.byID.Forget(ctx, idKey(id))
	return err
}
