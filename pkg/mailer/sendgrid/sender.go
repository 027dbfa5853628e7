// Package sendgrid delivers mail through the SendGrid v3 API.
package sendgrid

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	netmail "net/mail"
	"slices"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/dmitrymomot/mailforge/pkg/mailer"
)

var (
	ErrMissingAPIKey = errors.New("sendgrid: api key is required")
	ErrAPI           = errors.New("sendgrid: api error")
)

const sendEndpoint = "/v3/mail/send"

// Sender implements mailer.Sender over the SendGrid API.
type Sender struct {
	config Config
}

// New creates a SendGrid sender.
func New(cfg Config) (*Sender, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Sender{config: cfg}, nil
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	m, err := s.build(email)
	if err != nil {
		return err
	}

	req := sendgrid.GetRequest(s.config.APIKey, sendEndpoint, s.config.Host)
	req.Method = "POST"
	req.Body = mail.GetRequestBody(m)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid: send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: status %d: %s", ErrAPI, resp.StatusCode, resp.Body)
	}
	return nil
}

func (s *Sender) build(email *mailer.Email) (*mail.SGMailV3, error) {
	from := email.From
	if from == "" {
		from = mailer.Recipient(s.config.SenderName, s.config.SenderEmail)
	}
	sender, err := address(from)
	if err != nil {
		return nil, fmt.Errorf("sendgrid: from: %w", err)
	}

	m := mail.NewV3Mail()
	m.SetFrom(sender)
	m.Subject = email.Subject

	p := mail.NewPersonalization()
	for _, list := range []struct {
		add   func(...*mail.Email)
		addrs []string
	}{
		{p.AddTos, email.To},
		{p.AddCCs, email.CC},
		{p.AddBCCs, email.BCC},
	} {
		for _, raw := range list.addrs {
			a, err := address(raw)
			if err != nil {
				return nil, fmt.Errorf("sendgrid: recipient: %w", err)
			}
			list.add(a)
		}
	}
	if len(p.To) == 0 {
		return nil, mailer.ErrNoRecipient
	}
	m.AddPersonalizations(p)

	if email.ReplyTo != "" {
		if rt, err := address(email.ReplyTo); err == nil {
			m.SetReplyTo(rt)
		}
	}

	// SendGrid requires text/plain before text/html.
	if email.Text != "" {
		m.AddContent(mail.NewContent("text/plain", email.Text))
	}
	if email.HTML != "" {
		m.AddContent(mail.NewContent("text/html", email.HTML))
	}

	for name, value := range email.Headers {
		m.SetHeader(name, value)
	}

	if len(email.Tags) > 0 {
		names := make([]string, 0, len(email.Tags))
		for name := range email.Tags {
			names = append(names, name)
		}
		slices.Sort(names)
		m.AddCategories(names...)
	}

	for _, a := range email.Attachments {
		att := mail.NewAttachment()
		att.SetContent(base64.StdEncoding.EncodeToString(a.Content))
		att.SetFilename(a.Filename)
		if a.ContentType != "" {
			att.SetType(a.ContentType)
		}
		if a.ContentID != "" {
			att.SetDisposition("inline")
			att.SetContentID(a.ContentID)
		} else {
			att.SetDisposition("attachment")
		}
		m.AddAttachment(att)
	}

	return m, nil
}

func address(raw string) (*mail.Email, error) {
	a, err := netmail.ParseAddress(raw)
	if err != nil {
		return nil, err
	}
	return mail.NewEmail(a.Name, a.Address), nil
}
