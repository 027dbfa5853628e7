package hook

import "sync"

// Scope tracks registrations made for the duration of one operation
// and releases all of them exactly once, in reverse order, on Close.
//
//	scope := registry.NewScope()
//	defer scope.Close()
//	scope.AddFilter("mail_from", fromFilter, 500)
type Scope struct {
	registry *Registry
	releases []func()
	once     sync.Once
	mu       sync.Mutex
}

// NewScope opens a scope bound to the registry.
func (r *Registry) NewScope() *Scope {
	return &Scope{registry: r}
}

// AddFilter registers a filter that is removed when the scope closes.
func (s *Scope) AddFilter(name string, fn FilterFunc, priority int) ID {
	id := s.registry.AddFilter(name, fn, priority)
	s.Defer(func() { s.registry.RemoveFilter(name, id) })
	return id
}

// AddAction registers an action that is removed when the scope closes.
func (s *Scope) AddAction(name string, fn ActionFunc, priority int) ID {
	id := s.registry.AddAction(name, fn, priority)
	s.Defer(func() { s.registry.RemoveAction(name, id) })
	return id
}

// Defer schedules fn to run when the scope closes.
func (s *Scope) Defer(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releases = append(s.releases, fn)
}

// Len returns the number of pending releases.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.releases)
}

// Close runs every release in reverse order. Subsequent calls are no-ops.
// A panicking release does not prevent the remaining ones from running;
// the first panic is re-raised after all releases ran.
func (s *Scope) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		releases := s.releases
		s.releases = nil
		s.mu.Unlock()

		var recovered any
		for i := len(releases) - 1; i >= 0; i-- {
			func() {
				defer func() {
					if r := recover(); r != nil && recovered == nil {
						recovered = r
					}
				}()
				releases[i]()
			}()
		}
		if recovered != nil {
			panic(recovered)
		}
	})
}
