package hook

import (
	"slices"
	"sync"
)

// DefaultPriority is the priority used by most callers.
// Lower priorities run first; equal priorities run in registration order.
const DefaultPriority = 10

// FilterFunc transforms a value. Additional arguments are passed through from ApplyFilters.
type FilterFunc func(value any, args ...any) any

// ActionFunc reacts to a fired action.
type ActionFunc func(args ...any)

// ID identifies a single registration and is used to remove it.
// Go funcs are not comparable, so removal goes through the ID returned on add.
type ID uint64

type entry struct {
	filter   FilterFunc
	action   ActionFunc
	id       ID
	priority int
}

// Registry holds named filters and actions.
// It is safe for concurrent use; callbacks always run outside the lock.
type Registry struct {
	filters map[string][]entry
	actions map[string][]entry
	fired   map[string]int
	current []string
	seq     ID
	mu      sync.Mutex
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		filters: make(map[string][]entry),
		actions: make(map[string][]entry),
		fired:   make(map[string]int),
	}
}

// AddFilter registers a filter for name at the given priority.
func (r *Registry) AddFilter(name string, fn FilterFunc, priority int) ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(r.filters, name, entry{filter: fn, priority: priority})
}

// RemoveFilter removes a filter registration. Reports whether it existed.
func (r *Registry) RemoveFilter(name string, id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remove(r.filters, name, id)
}

// HasFilter reports whether at least one filter is registered for name.
func (r *Registry) HasFilter(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.filters[name]) > 0
}

// ApplyFilters passes value through every filter registered for name and returns the result.
func (r *Registry) ApplyFilters(name string, value any, args ...any) any {
	for _, e := range r.snapshot(r.filters, name) {
		value = e.filter(value, args...)
	}
	return value
}

// AddAction registers an action for name at the given priority.
func (r *Registry) AddAction(name string, fn ActionFunc, priority int) ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(r.actions, name, entry{action: fn, priority: priority})
}

// RemoveAction removes an action registration. Reports whether it existed.
func (r *Registry) RemoveAction(name string, id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remove(r.actions, name, id)
}

// HasAction reports whether at least one action is registered for name.
func (r *Registry) HasAction(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actions[name]) > 0
}

// DoAction fires name. The fired counter is incremented before callbacks run,
// so DidAction observes the action from inside its own callbacks.
func (r *Registry) DoAction(name string, args ...any) {
	r.mu.Lock()
	r.fired[name]++
	r.current = append(r.current, name)
	list := slices.Clone(r.actions[name])
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.current = r.current[:len(r.current)-1]
		r.mu.Unlock()
	}()

	for _, e := range list {
		e.action(args...)
	}
}

// DidAction returns how many times name has been fired.
func (r *Registry) DidAction(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fired[name]
}

// CurrentAction returns the innermost action being fired, or "" outside of any action.
func (r *Registry) CurrentAction() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.current) == 0 {
		return ""
	}
	return r.current[len(r.current)-1]
}

// DoingAction reports whether name is anywhere on the stack of actions being fired.
func (r *Registry) DoingAction(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.current, name)
}

// OnceUnlessFired registers fn to run exactly once when name fires,
// unless name has already fired. The check and the registration happen
// under one lock, so a concurrent DoAction either sees the registration
// or is observed as already fired. Reports whether fn was registered.
func (r *Registry) OnceUnlessFired(name string, fn ActionFunc, priority int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fired[name] > 0 {
		return false
	}

	var (
		once sync.Once
		id   ID
	)
	id = r.insert(r.actions, name, entry{
		priority: priority,
		action: func(args ...any) {
			once.Do(func() {
				r.RemoveAction(name, id)
				fn(args...)
			})
		},
	})
	return true
}

func (r *Registry) insert(m map[string][]entry, name string, e entry) ID {
	r.seq++
	e.id = r.seq
	list := m[name]
	// Keep the list sorted by priority; equal priorities keep registration order.
	idx, _ := slices.BinarySearchFunc(list, e.priority+1, func(x entry, p int) int {
		if x.priority < p {
			return -1
		}
		return 1
	})
	m[name] = slices.Insert(list, idx, e)
	return e.id
}

func (r *Registry) remove(m map[string][]entry, name string, id ID) bool {
	list := m[name]
	idx := slices.IndexFunc(list, func(e entry) bool { return e.id == id })
	if idx < 0 {
		return false
	}
	list = slices.Delete(list, idx, idx+1)
	if len(list) == 0 {
		delete(m, name)
	} else {
		m[name] = list
	}
	return true
}

func (r *Registry) snapshot(m map[string][]entry, name string) []entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(m[name])
}
