package mailforge

import (
	"context"
	"reflect"
	"slices"
)

// Mailable is a message type. Embed Message in a struct and implement Body:
//
//	type WelcomeEmail struct {
//		mailforge.Message
//		Name string
//	}
//
//	func (w *WelcomeEmail) Body(ctx context.Context) (string, error) {
//		return "Hello " + w.Name, nil
//	}
//
// When no subject is set, the subject is the type name ("WelcomeEmail").
type Mailable interface {
	// Body renders the message body. ctx carries the message locale.
	Body(ctx context.Context) (string, error)

	envelope() *Message
}

// Message holds the envelope, attachments and listeners of a mailable.
// Its setters return the receiver for chaining.
type Message struct {
	attrs       Attributes
	attachments []any
	listeners   Listeners
}

func (m *Message) envelope() *Message { return m }

// To sets the recipients. A User recipient also sets the locale unless one
// was set explicitly.
func (m *Message) To(v any) *Message {
	m.attrs.To = v
	if m.attrs.Locale == "" {
		m.attrs.Locale = localeOf(v)
	}
	return m
}

func (m *Message) Cc(v any) *Message      { m.attrs.Cc = v; return m }
func (m *Message) Bcc(v any) *Message     { m.attrs.Bcc = v; return m }
func (m *Message) ReplyTo(v any) *Message { m.attrs.ReplyTo = v; return m }

func (m *Message) Subject(s string) *Message { m.attrs.Subject = s; return m }
func (m *Message) Locale(l string) *Message  { m.attrs.Locale = l; return m }

// SetHeaders replaces the raw header lines.
func (m *Message) SetHeaders(headers ...string) *Message {
	m.attrs.Headers = slices.Clone(headers)
	return m
}

// AddHeader appends a raw "Name: value" header line.
func (m *Message) AddHeader(line string) *Message {
	m.attrs.Headers = append(m.attrs.Headers, line)
	return m
}

// SetAttachments replaces the attachments. Items are file paths or integer
// ids resolved by the mailer's AttachmentResolver.
func (m *Message) SetAttachments(items ...any) *Message {
	m.attachments = slices.Clone(items)
	return m
}

// AddAttachment appends attachments.
func (m *Message) AddAttachment(items ...any) *Message {
	m.attachments = append(m.attachments, items...)
	return m
}

func (m *Message) OnSuccess(ls ...Listener) *Message {
	m.listeners.OnSuccess(ls...)
	return m
}

func (m *Message) OnFailure(ls ...Listener) *Message {
	m.listeners.OnFailure(ls...)
	return m
}

// Attributes returns a snapshot of the envelope.
func (m *Message) Attributes() Attributes { return m.attrs.clone() }

// Attachments returns the unresolved attachment items.
func (m *Message) Attachments() []any { return slices.Clone(m.attachments) }

// Listeners returns a copy of the listener chains.
func (m *Message) Listeners() Listeners { return m.listeners.clone() }

// defaultSubject is the concrete type name of msg.
func defaultSubject(msg Mailable) string {
	t := reflect.TypeOf(msg)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
