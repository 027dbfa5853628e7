package mailforge

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
)

// Event is passed to listeners after a dispatch settles.
type Event struct {
	// Params are the parameters after the email_params filter.
	// Nil when the message failed before a dispatch started.
	Params *MailParams
	// Dispatcher is nil in the same case as Params.
	Dispatcher *Dispatcher
	// Err is set for failure listeners.
	Err error
}

// ListenerHandler is implemented by listener types that are instantiated
// per invocation. See Handler.
type ListenerHandler interface {
	Handle(ctx context.Context, e Event) bool
}

// Listener is one link of a success or failure chain. Returning false
// stops the rest of the chain.
type Listener struct {
	name string
	call func(ctx context.Context, e Event) bool
}

// Callback wraps fn as a listener.
func Callback(fn func(ctx context.Context, e Event) bool) Listener {
	return Listener{name: "callback", call: fn}
}

// Handler returns a listener that allocates a fresh T for every invocation
// and calls its Handle method.
func Handler[T any, PT interface {
	*T
	ListenerHandler
}]() Listener {
	return Listener{
		name: reflect.TypeFor[T]().String(),
		call: func(ctx context.Context, e Event) bool {
			return PT(new(T)).Handle(ctx, e)
		},
	}
}

// Name identifies the listener in logs.
func (l Listener) Name() string { return l.name }

// Listeners holds ordered success and failure chains.
type Listeners struct {
	success []Listener
	failure []Listener
}

// OnSuccess appends listeners to the success chain.
func (l *Listeners) OnSuccess(ls ...Listener) {
	l.success = appendValid(l.success, ls)
}

// OnFailure appends listeners to the failure chain.
func (l *Listeners) OnFailure(ls ...Listener) {
	l.failure = appendValid(l.failure, ls)
}

func (l Listeners) Success() []Listener { return slices.Clone(l.success) }
func (l Listeners) Failure() []Listener { return slices.Clone(l.failure) }

// merge appends other's chains after the receiver's.
func (l *Listeners) merge(other Listeners) {
	l.success = append(l.success, other.success...)
	l.failure = append(l.failure, other.failure...)
}

func (l Listeners) clone() Listeners {
	return Listeners{success: slices.Clone(l.success), failure: slices.Clone(l.failure)}
}

func appendValid(dst, ls []Listener) []Listener {
	for _, x := range ls {
		if x.call != nil {
			dst = append(dst, x)
		}
	}
	return dst
}

// runChain invokes listeners in order until one returns false or panics.
// It returns how many listeners were invoked.
func runChain(ctx context.Context, log *slog.Logger, phase string, chain []Listener, e Event) int {
	for i, l := range chain {
		if !invoke(ctx, log, phase, l, e) {
			return i + 1
		}
	}
	return len(chain)
}

func invoke(ctx context.Context, log *slog.Logger, phase string, l Listener, e Event) (proceed bool) {
	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "mail listener panicked",
				slog.String("phase", phase),
				slog.String("listener", l.name),
				slog.Any("error", fmt.Errorf("%w: %v", ErrListenerPanic, r)),
			)
			proceed = false
		}
	}()
	return l.call(ctx, e)
}
