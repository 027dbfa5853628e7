// Package logsender is a development mailer.Sender that writes messages to
// a slog logger instead of delivering them.
package logsender

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/mailforge/pkg/mailer"
)

// Sender logs every message and keeps the last few in memory.
type Sender struct {
	logger *slog.Logger
	sent   []*mailer.Email
	keep   int
	mu     sync.Mutex
}

// New creates a sender writing to logger. keep bounds how many messages
// Sent returns; zero disables retention.
func New(logger *slog.Logger, keep int) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{logger: logger, keep: keep}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	attachments := make([]string, 0, len(email.Attachments))
	for _, a := range email.Attachments {
		attachments = append(attachments, a.Filename)
	}

	s.logger.InfoContext(ctx, "email not delivered (log sender)",
		slog.String("from", email.From),
		slog.Any("to", email.To),
		slog.Any("cc", email.CC),
		slog.Any("bcc", email.BCC),
		slog.String("subject", email.Subject),
		slog.String("charset", email.Charset),
		slog.String("encoding", email.Encoding),
		slog.Any("attachments", attachments),
		slog.String("text", email.Text),
	)

	if s.keep > 0 {
		s.mu.Lock()
		s.sent = append(s.sent, email)
		if over := len(s.sent) - s.keep; over > 0 {
			s.sent = s.sent[over:]
		}
		s.mu.Unlock()
	}
	return nil
}

// Sent returns the retained messages, oldest first.
func (s *Sender) Sent() []*mailer.Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*mailer.Email, len(s.sent))
	copy(out, s.sent)
	return out
}
