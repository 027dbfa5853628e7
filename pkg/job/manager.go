package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/mailforge/pkg/logger"
)

const defaultMaxWorkers = 100

// Manager is a River-backed scheduler and worker. It runs registered tasks,
// cron tasks and deferred sends registered with RegisterSingular.
type Manager struct {
	*Enqueuer
	registry  *taskRegistry
	callbacks *callbackStore
	logger    *slog.Logger

	deferredAttempts int
	deferredQueue    string

	mu      sync.Mutex
	started bool
}

// NewManager creates a manager. Jobs can be inserted before Start.
func NewManager(pool *pgxpool.Pool, opts ...Option) (*Manager, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.logger = logger.Or(cfg.logger)
	if cfg.maxWorkers == 0 {
		cfg.maxWorkers = defaultMaxWorkers
	}

	queues := map[string]river.QueueConfig{
		river.QueueDefault: {MaxWorkers: cfg.maxWorkers},
	}
	for name, workers := range cfg.queues {
		queues[name] = river.QueueConfig{MaxWorkers: workers}
	}

	periodicJobs, err := periodicJobs(cfg)
	if err != nil {
		return nil, err
	}

	callbacks := newCallbackStore()
	cfg.registry.register(deferredTask, &deferredExecutor{callbacks: callbacks})

	workers := river.NewWorkers()
	river.AddWorker(workers, &taskWorker{registry: cfg.registry, logger: cfg.logger})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       queues,
		Workers:      workers,
		PeriodicJobs: periodicJobs,
		Logger:       cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create client: %w", err)
	}

	return &Manager{
		Enqueuer:         &Enqueuer{client: client, logger: cfg.logger},
		registry:         cfg.registry,
		callbacks:        callbacks,
		logger:           cfg.logger,
		deferredAttempts: cfg.deferredAttempts,
		deferredQueue:    cfg.deferredQueue,
	}, nil
}

func periodicJobs(cfg *config) ([]*river.PeriodicJob, error) {
	jobs := make([]*river.PeriodicJob, 0, len(cfg.schedules))
	for _, sched := range cfg.schedules {
		schedule, err := parseCronSchedule(sched.schedule)
		if err != nil {
			return nil, fmt.Errorf("job: invalid cron schedule %q: %w", sched.schedule, err)
		}

		name := sched.name
		jobs = append(jobs, river.NewPeriodicJob(
			schedule,
			func() (river.JobArgs, *river.InsertOpts) {
				return &taskArgs{TaskName: name}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: false},
		))
		cfg.registry.register(name, periodicTask(sched.handler))
	}
	return jobs, nil
}

// RegisterSingular schedules fn to run once at at. A key that is already
// pending, in this process or in the jobs table, is ignored. interval
// bounds the uniqueness of key; zero keeps it unique while the job exists.
//
// The callback is held in memory, so the job must be worked by this
// process. Jobs whose callback is gone are cancelled with ErrCallbackLost.
func (m *Manager) RegisterSingular(ctx context.Context, key string, interval time.Duration, at time.Time, fn func(context.Context) error) error {
	if key == "" {
		return ErrInvalidKey
	}
	if fn == nil {
		return ErrNilCallback
	}
	if !m.callbacks.add(key, fn) {
		m.logger.DebugContext(ctx, "deferred job already pending", slog.String("key", key))
		return nil
	}

	duplicate, err := m.insert(ctx, deferredTask, deferredPayload{Key: key},
		ScheduledAt(at),
		UniqueKey(key),
		UniqueFor(interval),
		MaxAttempts(m.deferredAttempts),
		InQueue(m.deferredQueue),
		Tags("deferred"),
	)
	if err != nil || duplicate {
		m.callbacks.remove(key)
	}
	return err
}

// Pending returns how many deferred callbacks wait for their job.
func (m *Manager) Pending() int { return m.callbacks.len() }

// Enqueue inserts a job for a registered task.
func (m *Manager) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	if _, ok := m.registry.get(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return m.Enqueuer.Enqueue(ctx, name, payload, opts...)
}

// Start begins working jobs.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}
	if err := m.client.Start(ctx); err != nil {
		return fmt.Errorf("job: start client: %w", err)
	}

	m.started = true
	m.logger.InfoContext(ctx, "job manager started", slog.Any("tasks", m.registry.names()))
	return nil
}

// Stop waits for running jobs and stops the client.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return ErrNotStarted
	}
	if err := m.client.Stop(ctx); err != nil {
		return fmt.Errorf("job: stop client: %w", err)
	}

	m.started = false
	m.logger.InfoContext(ctx, "job manager stopped")
	return nil
}

// taskWorker dispatches every job to the executor registered for its task name.
type taskWorker struct {
	river.WorkerDefaults[taskArgs]
	registry *taskRegistry
	logger   *slog.Logger
}

func (w *taskWorker) Work(ctx context.Context, job *river.Job[taskArgs]) error {
	executor, ok := w.registry.get(job.Args.TaskName)
	if !ok {
		return river.JobCancel(fmt.Errorf("%w: %s", ErrUnknownTask, job.Args.TaskName))
	}

	log := w.logger.With(
		slog.String("task", job.Args.TaskName),
		slog.Int64("job_id", job.ID),
		slog.Int("attempt", job.Attempt),
	)
	log.DebugContext(ctx, "executing task")

	if err := executor.Execute(ctx, job.Args.Payload); err != nil {
		if a, ok := executor.(abandoner); ok && job.Attempt >= job.MaxAttempts {
			a.Abandon(job.Args.Payload)
		}
		log.ErrorContext(ctx, "task failed", slog.Any("error", err))
		if errors.Is(err, ErrInvalidPayload) {
			// Retrying cannot fix a payload.
			return river.JobCancel(err)
		}
		return err
	}

	log.DebugContext(ctx, "task completed")
	return nil
}

type cronSchedule struct {
	schedule cron.Schedule
}

func (s cronSchedule) Next(current time.Time) time.Time {
	return s.schedule.Next(current)
}

func parseCronSchedule(expr string) (river.PeriodicSchedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return cronSchedule{schedule: schedule}, nil
}
