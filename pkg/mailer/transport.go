package mailer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dmitrymomot/mailforge/pkg/hook"
	"github.com/dmitrymomot/mailforge/pkg/logger"
)

// Hook names used by Transport. Filters receive the value being resolved
// and the context of the Mail call as the first extra argument; actions
// receive their payload followed by that context.
const (
	HookMailFrom        = "mail_from"
	HookMailFromName    = "mail_from_name"
	HookMailCharset     = "mail_charset"
	HookMailContentType = "mail_content_type"
	HookMailFailed      = "mail_failed"    // payload: *DeliveryError
	HookMailSucceeded   = "mail_succeeded" // payload: *Email
)

// Transport is the host mail primitive: it turns a raw
// (to, subject, body, headers, attachments) call into an Email, lets hooks
// adjust sender identity, content type and charset, and hands the result
// to a Sender. Failures are reported through the mail_failed action,
// not through the return value alone.
type Transport struct {
	sender   Sender
	hooks    *hook.Registry
	text     *bluemonday.Policy
	readFile func(name string) ([]byte, error)
	logger   *slog.Logger
	config   Config
	encoding string
	mu       sync.RWMutex
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithTransportLogger sets the transport logger.
func WithTransportLogger(l *slog.Logger) TransportOption {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithFileReader replaces os.ReadFile for loading attachment paths.
func WithFileReader(fn func(name string) ([]byte, error)) TransportOption {
	return func(t *Transport) {
		if fn != nil {
			t.readFile = fn
		}
	}
}

// NewTransport creates a transport delivering through sender.
func NewTransport(sender Sender, hooks *hook.Registry, cfg Config, opts ...TransportOption) *Transport {
	cfg.applyDefaults()
	t := &Transport{
		sender:   sender,
		hooks:    hooks,
		text:     bluemonday.StrictPolicy(),
		readFile: os.ReadFile,
		logger:   logger.NewNope(),
		config:   cfg,
		encoding: cfg.Encoding,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Encoding returns the transfer encoding applied to the next message.
func (t *Transport) Encoding() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.encoding
}

// SetEncoding changes the transfer encoding. Hooks on mail_charset use it
// to pick an encoding that fits the charset.
func (t *Transport) SetEncoding(enc string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.encoding = enc
}

// Mail composes and delivers one message. It reports whether the sender accepted it.
func (t *Transport) Mail(ctx context.Context, to, subject, body string, headers, attachments []string) bool {
	email, err := t.compose(ctx, to, subject, body, headers, attachments)
	if err == nil {
		if sendErr := t.sender.Send(ctx, email); sendErr != nil {
			err = errors.Join(ErrSendFailed, sendErr)
		}
	}

	if err != nil {
		derr := &DeliveryError{Err: err, Subject: subject, To: SplitAddresses(to)}
		t.logger.ErrorContext(ctx, "mail delivery failed",
			slog.Any("to", derr.To),
			slog.String("subject", subject),
			slog.Any("error", err),
		)
		t.hooks.DoAction(HookMailFailed, derr, ctx)
		return false
	}

	t.logger.DebugContext(ctx, "mail delivered",
		slog.Int("recipients", len(email.Recipients())),
		slog.String("encoding", email.Encoding),
	)
	t.hooks.DoAction(HookMailSucceeded, email, ctx)
	return true
}

func (t *Transport) compose(ctx context.Context, to, subject, body string, headers, attachments []string) (*Email, error) {
	recipients := SplitAddresses(to)
	if len(recipients) == 0 {
		return nil, ErrNoRecipient
	}

	h := ParseHeaders(headers)

	fromEmail := orDefault(h.FromEmail, t.config.FromEmail)
	fromName := orDefault(h.FromName, t.config.FromName)
	if h.FromEmail != "" && h.FromName == "" {
		fromName = ""
	}
	fromEmail = t.filterString(ctx, HookMailFrom, fromEmail)
	fromName = t.filterString(ctx, HookMailFromName, fromName)

	contentType := t.filterString(ctx, HookMailContentType, orDefault(h.ContentType, "text/plain"))
	// The charset filter runs before the encoding is read so hooks can adjust it.
	charset := t.filterString(ctx, HookMailCharset, orDefault(h.Charset, t.config.Charset))

	email := &Email{
		To:       recipients,
		CC:       h.CC,
		BCC:      h.BCC,
		ReplyTo:  h.ReplyTo,
		Subject:  subject,
		From:     Recipient(fromName, fromEmail),
		Headers:  h.Extra,
		Charset:  charset,
		Encoding: t.Encoding(),
	}

	if strings.EqualFold(contentType, "text/html") {
		email.HTML = body
		email.Text = strings.TrimSpace(html.UnescapeString(t.text.Sanitize(body)))
	} else {
		email.Text = body
	}

	for _, path := range attachments {
		if path == "" {
			continue
		}
		content, err := t.readFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrAttachmentUnreadable, path, err)
		}
		email.Attachments = append(email.Attachments, Attachment{
			Filename:    filepath.Base(path),
			ContentType: orDefault(mime.TypeByExtension(filepath.Ext(path)), "application/octet-stream"),
			Content:     content,
		})
	}

	return email, nil
}

func (t *Transport) filterString(ctx context.Context, name, value string) string {
	if s, ok := t.hooks.ApplyFilters(name, value, ctx).(string); ok {
		return s
	}
	return value
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
