// Package smtp delivers mail over an SMTP relay using go-mail.
// A new connection is dialed per message.
package smtp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/dmitrymomot/mailforge/pkg/mailer"
	"github.com/dmitrymomot/mailforge/pkg/mailer/message"
)

var (
	ErrMissingHost      = errors.New("smtp: host is required")
	ErrInvalidTLSPolicy = errors.New("smtp: invalid tls policy")
)

// Sender implements mailer.Sender over SMTP.
type Sender struct {
	config Config
	opts   []mail.Option
}

// New validates cfg and creates a sender.
func New(cfg Config) (*Sender, error) {
	if cfg.Host == "" {
		return nil, ErrMissingHost
	}
	policy, err := tlsPolicy(cfg.TLSPolicy)
	if err != nil {
		return nil, err
	}

	opts := []mail.Option{mail.WithTLSPortPolicy(policy)}
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	return &Sender{config: cfg, opts: opts}, nil
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	m, err := message.Build(email, mailer.Recipient(s.config.SenderName, s.config.SenderEmail))
	if err != nil {
		return fmt.Errorf("smtp: %w", err)
	}

	client, err := mail.NewClient(s.config.Host, s.opts...)
	if err != nil {
		return fmt.Errorf("smtp: create client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp: send: %w", err)
	}
	return nil
}

func tlsPolicy(name string) (mail.TLSPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", TLSMandatory:
		return mail.TLSMandatory, nil
	case TLSOpportunistic:
		return mail.TLSOpportunistic, nil
	case TLSNone:
		return mail.NoTLS, nil
	default:
		return mail.TLSMandatory, fmt.Errorf("%w: %q", ErrInvalidTLSPolicy, name)
	}
}
