package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/riverqueue/river"
)

// deferredTask is the task name of sends registered through RegisterSingular.
const deferredTask = "mailforge:deferred"

type deferredPayload struct {
	Key string `json:"key"`
}

// callbackStore holds the callbacks of pending deferred jobs. Callbacks
// live in memory; the job row only carries the key.
type callbackStore struct {
	items map[string]func(context.Context) error
	mu    sync.Mutex
}

func newCallbackStore() *callbackStore {
	return &callbackStore{items: make(map[string]func(context.Context) error)}
}

// add stores fn under key unless key is already pending.
func (s *callbackStore) add(key string, fn func(context.Context) error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; ok {
		return false
	}
	s.items[key] = fn
	return true
}

func (s *callbackStore) get(key string) (func(context.Context) error, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn, ok := s.items[key]
	return fn, ok
}

func (s *callbackStore) remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

func (s *callbackStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// deferredExecutor runs the callback stored for a deferred job.
type deferredExecutor struct {
	callbacks *callbackStore
}

func (e *deferredExecutor) Execute(ctx context.Context, raw json.RawMessage) error {
	var p deferredPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return river.JobCancel(errors.Join(ErrInvalidPayload, err))
	}

	fn, ok := e.callbacks.get(p.Key)
	if !ok {
		return river.JobCancel(fmt.Errorf("%w: %s", ErrCallbackLost, p.Key))
	}
	if err := fn(ctx); err != nil {
		return err
	}
	e.callbacks.remove(p.Key)
	return nil
}

func (e *deferredExecutor) Abandon(raw json.RawMessage) {
	var p deferredPayload
	if json.Unmarshal(raw, &p) == nil {
		e.callbacks.remove(p.Key)
	}
}
