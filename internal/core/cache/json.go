package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Typed stores values of one type as JSON under prefix+id.
type Typed[T any] struct {
	c      *Cache
	prefix string
	ttl    time.Duration
}

func NewTyped[T any](c *Cache, prefix string, ttl time.Duration) *Typed[T] {
	return &Typed[T]{c: c, prefix: prefix, ttl: ttl}
}

func (t *Typed[T]) Key(id string) string { return t.prefix + id }

// Get returns the cached value for id or loads, stores and returns it.
// Load errors are returned as is and never cached.
func (t *Typed[T]) Get(ctx context.Context, id string, load func(context.Context) (*T, error)) (*T, error) {
	b, err := t.c.GetOrLoad(ctx, t.Key(id), t.ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	var out *T
	if err := json.Unmarshal(b, &out); err != nil {
		// 脏数据直接删除，下次回源
		_ = t.c.Del(ctx, t.Key(id))
		return nil, err
	}
	return out, nil
}

func (t *Typed[T]) Forget(ctx context.Context, id string) error {
	return t.c.Del(ctx, t.Key(id))
}

// SetJSON stores v encoded as JSON and returns the encoding.
func SetJSON(c *Cache, ctx context.Context, key string, v any, ttl time.Duration) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, c.Set(ctx, key, b, ttl)
}
