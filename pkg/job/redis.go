package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/mailforge/pkg/logger"
)

// Redis schedules deferred sends in a sorted set scored by due time.
// Uniqueness windows are Redis keys, so they hold across instances. Each
// instance runs only the callbacks it registered; Run polls for them.
type Redis struct {
	client redis.UniversalClient
	logger *slog.Logger
	now    func() time.Time

	key          string
	pollInterval time.Duration
	batchSize    int64
	staleAfter   time.Duration

	wg        sync.WaitGroup
	mu        sync.Mutex
	callbacks map[string]func(context.Context) error
}

// RedisOption configures a Redis scheduler.
type RedisOption func(*Redis)

// WithRedisKey sets the sorted set key. Default "mailforge:schedule".
func WithRedisKey(key string) RedisOption {
	return func(r *Redis) {
		if key != "" {
			r.key = key
		}
	}
}

// WithPollInterval sets how often Run looks for due work. Default 1s.
func WithPollInterval(d time.Duration) RedisOption {
	return func(r *Redis) {
		if d > 0 {
			r.pollInterval = d
		}
	}
}

// WithStaleAfter sets how long an overdue entry may stay unclaimed before
// it is pruned. Default 24h.
func WithStaleAfter(d time.Duration) RedisOption {
	return func(r *Redis) {
		if d > 0 {
			r.staleAfter = d
		}
	}
}

// WithRedisLogger sets the scheduler logger.
func WithRedisLogger(l *slog.Logger) RedisOption {
	return func(r *Redis) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRedisClock sets the time source.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(r *Redis) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRedis creates a Redis scheduler. Obtain client from pkg/redis.Open.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) (*Redis, error) {
	if client == nil {
		return nil, ErrClientRequired
	}
	r := &Redis{
		client:       client,
		logger:       logger.NewNope(),
		now:          time.Now,
		key:          "mailforge:schedule",
		pollInterval: time.Second,
		batchSize:    100,
		staleAfter:   24 * time.Hour,
		callbacks:    make(map[string]func(context.Context) error),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RegisterSingular queues fn for at. With a positive interval, a key seen
// by any instance within the interval is ignored.
func (r *Redis) RegisterSingular(ctx context.Context, key string, interval time.Duration, at time.Time, fn func(context.Context) error) error {
	if key == "" {
		return ErrInvalidKey
	}
	if fn == nil {
		return ErrNilCallback
	}

	if interval > 0 {
		ok, err := r.client.SetNX(ctx, r.lockKey(key), at.Unix(), interval).Result()
		if err != nil {
			return fmt.Errorf("job: lock %s: %w", key, err)
		}
		if !ok {
			r.logger.DebugContext(ctx, "key within uniqueness window", slog.String("key", key))
			return nil
		}
	}

	r.mu.Lock()
	if _, ok := r.callbacks[key]; ok {
		r.mu.Unlock()
		return nil
	}
	r.callbacks[key] = fn
	r.mu.Unlock()

	err := r.client.ZAddNX(ctx, r.key, redis.Z{Score: float64(at.Unix()), Member: key}).Err()
	if err != nil {
		r.forget(key)
		return fmt.Errorf("job: schedule %s: %w", key, err)
	}
	return nil
}

// Run polls for due work until ctx is cancelled, then waits for running
// callbacks.
func (r *Redis) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	defer r.wg.Wait()

	for {
		if err := r.Poll(ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.ErrorContext(ctx, "schedule poll failed", slog.Any("error", err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Poll claims due entries owned by this instance and starts their callbacks.
func (r *Redis) Poll(ctx context.Context) error {
	now := r.now()

	stale := strconv.FormatInt(now.Add(-r.staleAfter).Unix(), 10)
	if err := r.client.ZRemRangeByScore(ctx, r.key, "-inf", "("+stale).Err(); err != nil {
		return fmt.Errorf("job: prune schedule: %w", err)
	}

	due, err := r.client.ZRangeByScore(ctx, r.key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: r.batchSize,
	}).Result()
	if err != nil {
		return fmt.Errorf("job: read schedule: %w", err)
	}

	for _, key := range due {
		fn, ok := r.callback(key)
		if !ok {
			continue
		}
		removed, err := r.client.ZRem(ctx, r.key, key).Result()
		if err != nil {
			return fmt.Errorf("job: claim %s: %w", key, err)
		}
		r.forget(key)
		if removed == 0 {
			continue
		}

		r.wg.Add(1)
		go r.run(context.WithoutCancel(ctx), key, fn)
	}
	return nil
}

// Pending returns the number of entries in the schedule across instances.
func (r *Redis) Pending(ctx context.Context) (int64, error) {
	return r.client.ZCard(ctx, r.key).Result()
}

func (r *Redis) run(ctx context.Context, key string, fn func(context.Context) error) {
	defer r.wg.Done()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.ErrorContext(ctx, "scheduled callback panicked",
				slog.String("key", key),
				slog.Any("error", fmt.Errorf("%v", rec)),
			)
		}
	}()

	if err := fn(ctx); err != nil {
		r.logger.ErrorContext(ctx, "scheduled callback failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}

func (r *Redis) callback(key string) (func(context.Context) error, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn, ok := r.callbacks[key]
	return fn, ok
}

func (r *Redis) forget(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.callbacks, key)
}

func (r *Redis) lockKey(key string) string {
	return r.key + ":lock:" + key
}
