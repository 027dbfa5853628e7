// Package mailforge composes and dispatches email through a host mail
// transport with a hook system.
//
// A message is a struct embedding Message with a Body method. A Mailer
// holds the default sender identity and hands out Compose builders:
//
//	hooks := hook.New()
//	transport := mailer.NewTransport(sender, hooks, mailer.Config{})
//	m := mailforge.New(transport, hooks,
//		mailforge.WithFrom("Team", "team@example.com"),
//		mailforge.WithScheduler(job.NewMemory()),
//	)
//
//	m.To(user).
//		OnSuccess(mailforge.Callback(func(ctx context.Context, e mailforge.Event) bool {
//			return true
//		})).
//		Send(ctx, &WelcomeEmail{Name: "Ann"})
//
// # Dispatch
//
// Every send runs through a Dispatcher. Before calling the transport it
// installs temporary hooks: a mail_failed action that runs the failure
// listeners, a mail_charset filter that picks base64 for UTF-8 and 8bit
// otherwise, and mail_from / mail_from_name filters when an identity is set.
// A locale carried by the message is switched on for the duration of the
// send. Everything is undone before Dispatch returns, and the
// mailforge/dispatched action fires.
//
// Listener chains stop at the first listener returning false. A listener
// that panics is logged and stops its chain.
//
// # Deferred sends
//
// Compose.SendLater hands the message to a Scheduler, Compose.SendOnAction
// waits for a hook action and Compose.SendWhen sends only when a condition holds.
// Scheduled and action-triggered sends run under Detached: their locale
// lives in the context and the shared LocaleSwitcher is left alone.
//
// # Sender identity
//
// Mailer.From and Mailer.UseCharset apply to the next send only, then
// revert to the configured defaults. The sender given to Mailer.Make stays
// with that builder for all of its sends.
package mailforge
