package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/dmitrymomot/mailforge/pkg/logger"
)

// Enqueuer inserts jobs without processing them. Use it in processes that
// schedule sends for a separate worker, such as the CLI schedule command.
type Enqueuer struct {
	client *river.Client[pgx.Tx]
	logger *slog.Logger
}

// EnqueuerOption configures the Enqueuer.
type EnqueuerOption func(*Enqueuer)

// WithEnqueuerLogger sets the enqueuer logger.
func WithEnqueuerLogger(l *slog.Logger) EnqueuerOption {
	return func(e *Enqueuer) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEnqueuer creates an insert-only client.
func NewEnqueuer(pool *pgxpool.Pool, opts ...EnqueuerOption) (*Enqueuer, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	e := &Enqueuer{logger: logger.NewNope()}
	for _, opt := range opts {
		opt(e)
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{Logger: e.logger})
	if err != nil {
		return nil, fmt.Errorf("job: create enqueuer client: %w", err)
	}
	e.client = client
	return e, nil
}

// Enqueue inserts a job for the task called name. The task is looked up by
// the worker that picks the job.
func (e *Enqueuer) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	_, err := e.insert(ctx, name, payload, opts...)
	return err
}

// insert reports whether the job was skipped as a duplicate of a unique job.
func (e *Enqueuer) insert(ctx context.Context, name string, payload any, opts ...EnqueueOption) (bool, error) {
	args, insertOpts, err := buildJobArgs(name, payload, opts...)
	if err != nil {
		return false, err
	}

	res, err := e.client.Insert(ctx, args, insertOpts)
	if err != nil {
		return false, fmt.Errorf("job: enqueue %s: %w", name, err)
	}

	e.logger.DebugContext(ctx, "job enqueued",
		slog.String("task", name),
		slog.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return res.UniqueSkippedAsDuplicate, nil
}

// taskArgs is the River argument type shared by every task.
type taskArgs struct {
	TaskName  string          `json:"task_name"`
	UniqueKey string          `json:"unique_key,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (taskArgs) Kind() string { return "mailforge:task" }

func buildJobArgs(name string, payload any, opts ...EnqueueOption) (*taskArgs, *river.InsertOpts, error) {
	args := &taskArgs{TaskName: name}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("job: marshal payload: %w", err)
		}
		args.Payload = raw
	}

	cfg := &enqueueConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	insertOpts := &river.InsertOpts{
		Queue:       cfg.queue,
		MaxAttempts: cfg.maxAttempts,
		Priority:    cfg.priority,
		Tags:        cfg.tags,
	}
	if cfg.scheduledAt != nil {
		insertOpts.ScheduledAt = *cfg.scheduledAt
	}
	if cfg.uniqueKey != "" {
		args.UniqueKey = cfg.uniqueKey
		insertOpts.UniqueOpts = river.UniqueOpts{ByArgs: true, ByPeriod: cfg.uniqueFor}
	}

	return args, insertOpts, nil
}
