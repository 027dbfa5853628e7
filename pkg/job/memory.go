package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/mailforge/pkg/logger"
)

// Memory is an in-process scheduler backed by timers. Pending work is lost
// when the process exits. Suitable for tests and single-instance services.
type Memory struct {
	logger *slog.Logger
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	pending map[string]*time.Timer
	// Keys that ran recently, with the end of their uniqueness window.
	recent  map[string]time.Time
	stopped bool
}

// MemoryOption configures a Memory scheduler.
type MemoryOption func(*Memory)

// WithMemoryLogger sets the scheduler logger.
func WithMemoryLogger(l *slog.Logger) MemoryOption {
	return func(m *Memory) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMemoryClock sets the time source used to compute timer delays.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory creates a timer-based scheduler.
func NewMemory(opts ...MemoryOption) *Memory {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Memory{
		logger:  logger.NewNope(),
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[string]*time.Timer),
		recent:  make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RegisterSingular runs fn once at at, or immediately if at is in the past.
// A key that is pending, or ran less than interval ago, is ignored.
func (m *Memory) RegisterSingular(ctx context.Context, key string, interval time.Duration, at time.Time, fn func(context.Context) error) error {
	if key == "" {
		return ErrInvalidKey
	}
	if fn == nil {
		return ErrNilCallback
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrStopped
	}

	now := m.now()
	for k, until := range m.recent {
		if !now.Before(until) {
			delete(m.recent, k)
		}
	}
	if _, ok := m.pending[key]; ok {
		m.logger.DebugContext(ctx, "key already pending", slog.String("key", key))
		return nil
	}
	if _, ok := m.recent[key]; ok {
		m.logger.DebugContext(ctx, "key ran recently", slog.String("key", key))
		return nil
	}

	m.wg.Add(1)
	m.pending[key] = time.AfterFunc(max(at.Sub(now), 0), func() {
		m.run(key, interval, fn)
	})
	return nil
}

func (m *Memory) run(key string, interval time.Duration, fn func(context.Context) error) {
	defer m.wg.Done()

	m.mu.Lock()
	delete(m.pending, key)
	if interval > 0 {
		m.recent[key] = m.now().Add(interval)
	}
	m.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			m.logger.ErrorContext(m.ctx, "scheduled callback panicked",
				slog.String("key", key),
				slog.Any("error", fmt.Errorf("%v", r)),
			)
		}
	}()

	if err := fn(m.ctx); err != nil {
		m.logger.ErrorContext(m.ctx, "scheduled callback failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}

// Pending returns the number of callbacks waiting for their time.
func (m *Memory) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Cancel drops a pending key. It reports whether a callback was dropped.
func (m *Memory) Cancel(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.pending[key]
	if !ok || !t.Stop() {
		return false
	}
	delete(m.pending, key)
	m.wg.Done()
	return true
}

// Stop drops pending callbacks and waits for running ones until ctx is done.
// Running callbacks see their context cancelled when ctx expires.
func (m *Memory) Stop(ctx context.Context) error {
	m.mu.Lock()
	m.stopped = true
	for key, t := range m.pending {
		if t.Stop() {
			m.wg.Done()
		}
		delete(m.pending, key)
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.cancel()
		return nil
	case <-ctx.Done():
		m.cancel()
		return ctx.Err()
	}
}
