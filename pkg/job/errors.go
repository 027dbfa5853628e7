package job

import "errors"

var (
	// ErrUnknownTask is returned when a job names a task that was never registered.
	ErrUnknownTask = errors.New("job: unknown task")

	// ErrInvalidPayload is returned when a task payload cannot be
	// unmarshaled into the expected type.
	ErrInvalidPayload = errors.New("job: invalid payload")

	ErrAlreadyStarted = errors.New("job: already started")
	ErrNotStarted     = errors.New("job: not started")
	ErrPoolRequired   = errors.New("job: pool is required")
	ErrClientRequired = errors.New("job: redis client is required")

	// ErrStopped is returned by schedulers that no longer accept work.
	ErrStopped = errors.New("job: scheduler stopped")

	ErrInvalidKey  = errors.New("job: empty schedule key")
	ErrNilCallback  = errors.New("job: nil callback")

	// ErrCallbackLost is returned when a deferred job runs in a process that
	// does not hold its callback, typically after a restart.
	ErrCallbackLost = errors.New("job: deferred callback not found")
)
