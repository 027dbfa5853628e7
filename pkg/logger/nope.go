package logger

import "log/slog"

// NewNope returns a logger that discards every record.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Or returns l, or a discarding logger when l is nil.
func Or(l *slog.Logger) *slog.Logger {
	if l == nil {
		return NewNope()
	}
	return l
}
