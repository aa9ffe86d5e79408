package stream

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type Phase int32

const (
	Uninitialized Phase = iota
	Seeding
	Live
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Seeding:
		return "seeding"
	case Live:
		return "live"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

type Record struct {
	Partition int
	Offset    int64
	Value     []byte
	Time      time.Time
}

// Log is a single-topic, partitioned, append-only log.
// Seek positions the reader used by Fetch; Fetch blocks until a record arrives.
type Log interface {
	Partitions(ctx context.Context) ([]int, error)
	EndOffset(ctx context.Context, partition int) (int64, error)
	Seek(ctx context.Context, partition int, offset int64) error
	Fetch(ctx context.Context) (Record, error)
	Close() error
}

// Consumer seeds State from the newest record of the topic, then applies every later
// record in offset order until stopped.
type Consumer struct {
	log   Log
	state *State
	l     *zap.Logger

	phase     atomic.Int32
	partition int
	hooks     []func(Snapshot)
	closeOnce sync.Once
	closeErr  error
}

func NewConsumer(log Log, state *State, l *zap.Logger) *Consumer {
	if l == nil {
		l = zap.NewNop()
	}
	return &Consumer{log: log, state: state, l: l}
}

// OnApply registers fn to run after every installed snapshot. Register before Seed.
func (c *Consumer) OnApply(fn func(Snapshot)) { c.hooks = append(c.hooks, fn) }

func (c *Consumer) Phase() Phase { return Phase(c.phase.Load()) }

func (c *Consumer) setPhase(p Phase) {
	c.phase.Store(int32(p))
	consumerPhase.Set(float64(p))
}

// Seed discovers the partition to track and installs the newest record, if any.
// On an empty topic it goes live with no snapshot and without waiting for data.
func (c *Consumer) Seed(ctx context.Context) error {
	c.setPhase(Seeding)

	parts, err := c.log.Partitions(ctx)
	if err != nil {
		return c.fail(&ConnectionError{Op: "list partitions", Err: err})
	}
	if len(parts) == 0 {
		return c.fail(&ConnectionError{Op: "list partitions", Err: errors.New("topic has no partitions")})
	}
	sort.Ints(parts)
	c.partition = parts[0]
	if len(parts) != 1 {
		c.l.Warn("topic has more than one partition, only the first is tracked",
			zap.Int("partitions", len(parts)), zap.Int("tracked", c.partition))
	}

	end, err := c.log.EndOffset(ctx, c.partition)
	if err != nil {
		return c.fail(&ConnectionError{Op: "read end offset", Err: err})
	}
	if end == 0 {
		if err := c.log.Seek(ctx, c.partition, 0); err != nil {
			return c.fail(&ConnectionError{Op: "seek", Err: err})
		}
		c.l.Warn("topic has no messages, skipping initialization", zap.Int("partition", c.partition))
		c.setPhase(Live)
		return nil
	}

	c.l.Debug("seeking to newest record", zap.Int64("end_offset", end), zap.Int64("offset", end-1))
	if err := c.log.Seek(ctx, c.partition, end-1); err != nil {
		return c.fail(&ConnectionError{Op: "seek", Err: err})
	}
	rec, err := c.log.Fetch(ctx)
	if err != nil {
		return c.fail(&ConnectionError{Op: "fetch seed record", Err: err})
	}
	if snap, ok := c.apply(rec); ok {
		c.l.Info("state initialized", zap.Int("partition", snap.Partition), zap.Int64("offset", snap.Offset))
	}
	c.setPhase(Live)
	return nil
}

// Run applies records until ctx is cancelled (nil) or the log fails (*ConnectionError).
// The log is closed on return either way.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.Close()
	for {
		rec, err := c.log.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.l.Warn("stopping consumer")
				c.setPhase(Stopped)
				return nil
			}
			cerr := &ConnectionError{Op: "fetch", Err: err}
			c.l.Error("state consumer stopped", zap.Error(cerr))
			c.setPhase(Stopped)
			return cerr
		}
		if snap, ok := c.apply(rec); ok {
			c.l.Debug("consumed record", zap.Int("partition", snap.Partition), zap.Int64("offset", snap.Offset))
		}
	}
}

// Close releases the log. Safe to call more than once.
func (c *Consumer) Close() error {
	c.closeOnce.Do(func() {
		c.setPhase(Stopped)
		c.closeErr = c.log.Close()
	})
	return c.closeErr
}

func (c *Consumer) apply(rec Record) (Snapshot, bool) {
	var v any
	if err := json.Unmarshal(rec.Value, &v); err != nil {
		decodeErrors.Inc()
		c.l.Warn("skipping record", zap.Error(&DecodeError{Partition: rec.Partition, Offset: rec.Offset, Err: err}))
		return Snapshot{}, false
	}
	snap := Snapshot{Value: v, Partition: rec.Partition, Offset: rec.Offset, Time: rec.Time}
	if !c.state.Replace(snap) {
		return Snapshot{}, false
	}
	recordsApplied.Inc()
	currentOffset.Set(float64(rec.Offset))
	for _, fn := range c.hooks {
		fn(snap)
	}
	return snap, true
}

func (c *Consumer) fail(err error) error {
	c.l.Error("state consumer failed to start", zap.Error(err))
	_ = c.Close()
	return err
}
