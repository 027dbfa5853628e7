package job

import (
	"context"
	"log/slog"
)

type config struct {
	registry         *taskRegistry
	queues           map[string]int
	logger           *slog.Logger
	schedules        []scheduleConfig
	maxWorkers       int
	deferredAttempts int
	deferredQueue    string
}

func newConfig() *config {
	return &config{
		registry:         newTaskRegistry(),
		queues:           make(map[string]int),
		deferredAttempts: 1,
	}
}

type scheduleConfig struct {
	handler  func(context.Context) error
	name     string
	schedule string
}

// Option configures the Manager.
type Option func(*config)

// WithTask registers a task. P is the payload type decoded from JSON
// before Handle is called; T is usually inferred.
//
//	type SendRaw struct{ mailer *mailforge.Mailer }
//
//	func (t *SendRaw) Name() string { return "mailforge:send_raw" }
//	func (t *SendRaw) Handle(ctx context.Context, p RawPayload) error { ... }
//
//	job.WithTask[RawPayload](&SendRaw{mailer: m})
func WithTask[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}](task T) Option {
	return func(c *config) {
		c.registry.register(task.Name(), typedTask[P, T]{task: task})
	}
}

// WithScheduledTask registers a periodic task. Schedule returns a five-field
// cron expression (minute hour day month weekday).
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, scheduleConfig{
			name:     task.Name(),
			schedule: task.Schedule(),
			handler:  task.Handle,
		})
	}
}

// WithQueue configures a named queue with the given number of workers.
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithLogger sets the logger. If not set, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers sets the number of workers of the default queue.
// Defaults to 100.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

// WithDeferredAttempts sets how many times a deferred send is attempted.
// Defaults to 1.
func WithDeferredAttempts(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.deferredAttempts = n
		}
	}
}

// WithDeferredQueue routes deferred sends to a named queue. The queue must
// be configured with WithQueue.
func WithDeferredQueue(name string) Option {
	return func(c *config) {
		c.deferredQueue = name
	}
}
