package i18n

import "sync"

// Switcher tracks the active locale of a process and supports temporary
// switches that are undone with Restore. Switches nest: each successful
// Switch must be paired with one Restore. Calls are safe for concurrent
// use, but a Switch/Restore pair is not atomic: goroutines that switch
// independently must carry their locale in the context instead.
type Switcher struct {
	current string
	stack   []string
	mu      sync.Mutex
}

// NewSwitcher creates a switcher whose active locale is def.
// An invalid def falls back to DefaultLocale.
func NewSwitcher(def string) *Switcher {
	canonical, ok := Canonical(def)
	if !ok {
		canonical = DefaultLocale
	}
	return &Switcher{current: canonical}
}

// Locale returns the active locale.
func (s *Switcher) Locale() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Switch makes locale active. It reports false, leaving the state
// untouched, when locale is invalid or already active.
func (s *Switcher) Switch(locale string) bool {
	canonical, ok := Canonical(locale)
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if canonical == s.current {
		return false
	}
	s.stack = append(s.stack, s.current)
	s.current = canonical
	return true
}

// Restore reactivates the locale that preceded the last successful Switch.
// It reports false when there is nothing to restore.
func (s *Switcher) Restore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stack) == 0 {
		return false
	}
	last := len(s.stack) - 1
	s.current = s.stack[last]
	s.stack = s.stack[:last]
	return true
}

// IsSwitched reports whether a switch is in effect.
func (s *Switcher) IsSwitched() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stack) > 0
}
