package auth

import (
	"context"

	"golang.org/x/sync/semaphore"

	"account-service/pkg/utils"
)

// Hasher bounds how many bcrypt computations run at once.
type Hasher struct {
	cost int
	sem  *semaphore.Weighted
}

func NewHasher(cost int, concurrency int64) *Hasher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Hasher{cost: cost, sem: semaphore.NewWeighted(concurrency)}
}

func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)
	return utils.HashPassword(plaintext, h.cost)
}

// Verify is false for a wrong password, a corrupt digest, or a cancelled context alike.
func (h *Hasher) Verify(ctx context.Context, plaintext, digest string) bool {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.sem.Release(1)
	return utils.CheckPassword(plaintext, digest)
}
