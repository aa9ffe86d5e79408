package stream

import (
	"context"
	"time"

	"go.uber.org/zap"

	"account-service/internal/core/cache"
)

// Mirror republishes every applied snapshot to Redis: SET under Key, PUBLISH on Channel.
type Mirror struct {
	c       *cache.Cache
	Key     string
	Channel string
	Timeout time.Duration
	l       *zap.Logger
}

func NewMirror(c *cache.Cache, key, channel string, l *zap.Logger) *Mirror {
	if l == nil {
		l = zap.NewNop()
	}
	return &Mirror{c: c, Key: key, Channel: channel, Timeout: 2 * time.Second, l: l}
}

// Apply has the OnApply signature. Redis failures are logged and swallowed.
func (m *Mirror) Apply(snap Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), m.Timeout)
	defer cancel()

	b, err := cache.SetJSON(m.c, ctx, m.Key, snap, 0)
	if err != nil {
		m.l.Warn("mirror snapshot", zap.String("key", m.Key), zap.Error(err))
		return
	}
	if m.Channel == "" {
		return
	}
	if err := m.c.Publish(ctx, m.Channel, b); err != nil {
		m.l.Warn("publish snapshot", zap.String("channel", m.Channel), zap.Error(err))
	}
}
