package resend

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"strconv"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/mailforge/pkg/mailer"
)

// Sender delivers mail through the Resend API.
type Sender struct {
	client *resend.Client
	config Config
}

// New creates a Resend sender.
func New(cfg Config) (*Sender, error) {
	client := resend.NewClient(cfg.APIKey)
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("resend: invalid base url: %w", err)
		}
		client.BaseURL = u
	}
	return &Sender{client: client, config: cfg}, nil
}

// Send implements mailer.Sender. Resend picks its own transfer encoding, so
// Email.Encoding is ignored; a non-UTF-8 charset is passed as a header hint.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	req := &resend.SendEmailRequest{
		From:        s.from(email.From),
		To:          email.To,
		Cc:          email.CC,
		Bcc:         email.BCC,
		ReplyTo:     email.ReplyTo,
		Subject:     email.Subject,
		Html:        email.HTML,
		Text:        email.Text,
		Headers:     headers(email),
		Attachments: attachments(email.Attachments),
		Tags:        tags(email.Tags),
	}

	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend: failed to send email: %w", err)
	}
	return nil
}

func (s *Sender) from(from string) string {
	if from != "" {
		return from
	}
	return mailer.Recipient(s.config.SenderName, s.config.SenderEmail)
}

func headers(email *mailer.Email) map[string]string {
	if len(email.Headers) == 0 && email.Charset == "" {
		return nil
	}
	out := make(map[string]string, len(email.Headers)+1)
	maps.Copy(out, email.Headers)
	if email.Charset != "" {
		out["X-Charset"] = email.Charset
	}
	return out
}

func attachments(in []mailer.Attachment) []*resend.Attachment {
	if len(in) == 0 {
		return nil
	}
	out := make([]*resend.Attachment, len(in))
	for i, a := range in {
		out[i] = &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
			ContentId:   a.ContentID,
		}
	}
	return out
}

func tags(in mailer.Tags) []resend.Tag {
	if len(in) == 0 {
		return nil
	}
	out := make([]resend.Tag, 0, len(in))
	for name, value := range in {
		out = append(out, resend.Tag{Name: name, Value: tagValue(value)})
	}
	return out
}

// tagValue renders a tag value as a string. Presence-only tags become "true".
func tagValue(v any) string {
	switch val := v.(type) {
	case nil, struct{}:
		return "true"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
