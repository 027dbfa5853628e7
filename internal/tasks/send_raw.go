package tasks

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrymomot/mailforge"
	"github.com/dmitrymomot/mailforge/pkg/job"
)

// SendRawName is the task name durable sends are enqueued under.
const SendRawName = "mailforge:send_raw"

var validate = validator.New(validator.WithRequiredStructEnabled())

// RawPayload is a fully specified message that survives a round trip
// through the job queue.
type RawPayload struct {
	To            []string `json:"to" validate:"required,min=1,dive,email"`
	Cc            []string `json:"cc,omitempty" validate:"omitempty,dive,email"`
	Bcc           []string `json:"bcc,omitempty" validate:"omitempty,dive,email"`
	ReplyTo       string   `json:"reply_to,omitempty" validate:"omitempty,email"`
	Subject       string   `json:"subject" validate:"required"`
	Body          string   `json:"body"`
	HTML          bool     `json:"html,omitempty"`
	Locale        string   `json:"locale,omitempty" validate:"omitempty,bcp47_language_tag"`
	Headers       []string `json:"headers,omitempty"`
	Attachments   []string `json:"attachments,omitempty"`
	AttachmentIDs []int    `json:"attachment_ids,omitempty" validate:"omitempty,dive,gt=0"`
}

// Validate reports payload problems wrapped in job.ErrInvalidPayload.
func (p RawPayload) Validate() error {
	if err := validate.Struct(p); err != nil {
		return errors.Join(job.ErrInvalidPayload, err)
	}
	return nil
}

// rawMessage carries a pre-rendered body.
type rawMessage struct {
	mailforge.Message
	body string
}

func (m *rawMessage) Body(context.Context) (string, error) { return m.body, nil }

// Message converts p into a mailable.
func (p RawPayload) Message() mailforge.Mailable {
	msg := &rawMessage{body: p.Body}
	msg.Subject(p.Subject).SetHeaders(p.Headers...)
	if p.HTML {
		msg.AddHeader("Content-Type: text/html; charset=UTF-8")
	}
	if p.ReplyTo != "" {
		msg.ReplyTo(p.ReplyTo)
	}

	items := make([]any, 0, len(p.Attachments)+len(p.AttachmentIDs))
	for _, path := range p.Attachments {
		items = append(items, path)
	}
	for _, id := range p.AttachmentIDs {
		items = append(items, id)
	}
	msg.SetAttachments(items...)
	return msg
}

// SendRaw delivers RawPayload jobs. A false send returns
// mailforge.ErrNotDelivered so the queue retries it.
type SendRaw struct {
	mailer *mailforge.Mailer
}

// NewSendRaw creates the task.
func NewSendRaw(m *mailforge.Mailer) *SendRaw {
	return &SendRaw{mailer: m}
}

func (t *SendRaw) Name() string { return SendRawName }

func (t *SendRaw) Handle(ctx context.Context, p RawPayload) error {
	if err := p.Validate(); err != nil {
		return err
	}

	c := t.mailer.To(p.To).Locale(p.Locale)
	if len(p.Cc) > 0 {
		c.Cc(p.Cc)
	}
	if len(p.Bcc) > 0 {
		c.Bcc(p.Bcc)
	}
	if !c.Send(mailforge.Detached(ctx), p.Message()) {
		return mailforge.ErrNotDelivered
	}
	return nil
}
