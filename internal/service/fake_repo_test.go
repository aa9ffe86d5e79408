package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"account-service/internal/domain"
)

// memRepo is an in-memory UserRepository with a unique email index.
type memRepo struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]domain.User
}

func newMemRepo() *memRepo { return &memRepo{rows: map[uint64]domain.User{}} }

func (r *memRepo) FindByID(_ context.Context, id uint64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *memRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memRepo) Insert(_ context.Context, rec domain.NewUserRecord) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if u.Email == rec.Email {
			return nil, domain.ErrConflict
		}
	}
	r.nextID++
	now := time.Now()
	u := domain.User{
		ID: r.nextID, Email: rec.Email, Name: rec.Name, PasswordHash: rec.PasswordHash,
		IsSuperuser: rec.IsSuperuser, CreatedAt: now, UpdatedAt: now,
	}
	r.rows[u.ID] = u
	return &u, nil
}

func (r *memRepo) UpdateFields(_ context.Context, id uint64, ch domain.UserChanges) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if ch.Email != nil {
		for _, o := range r.rows {
			if o.ID != id && o.Email == *ch.Email {
				return nil, domain.ErrConflict
			}
		}
		u.Email = *ch.Email
	}
	if ch.Name != nil {
		u.Name = *ch.Name
	}
	if ch.PasswordHash != nil {
		u.PasswordHash = *ch.PasswordHash
	}
	if ch.IsSuperuser != nil {
		u.IsSuperuser = *ch.IsSuperuser
	}
	u.UpdatedAt = time.Now()
	r.rows[id] = u
	return &u, nil
}

func (r *memRepo) List(_ context.Context, offset, limit int) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.rows))
	for _, u := range r.rows {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return []domain.User{}, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) Delete(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}
