// Package hook provides named filters and actions ordered by priority.
//
// Filters transform a value and return it; actions are fire-and-forget
// notifications. Both are registered with a priority (lower runs first)
// and removed through the ID returned on registration.
//
// # Usage
//
//	hooks := hook.New()
//
//	id := hooks.AddFilter("mail_from", func(v any, _ ...any) any {
//		return "noreply@example.com"
//	}, 500)
//	defer hooks.RemoveFilter("mail_from", id)
//
//	from := hooks.ApplyFilters("mail_from", "noreply@localhost").(string)
//
// # Scopes
//
// A Scope groups registrations made for one operation and releases all of them
// exactly once on Close, which makes add/remove symmetry a matter of a single defer:
//
//	scope := hooks.NewScope()
//	defer scope.Close()
//	scope.AddAction("mail_failed", onFailed, hook.DefaultPriority)
//	scope.Defer(restoreEncoding)
//
// # Lifecycle queries
//
// DidAction and CurrentAction report whether an action has fired and which action
// is firing right now. OnceUnlessFired combines the check and the registration
// atomically for "run when X happens, unless X already happened" semantics.
package hook
