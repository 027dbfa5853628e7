// Package message converts a mailer.Email into an RFC 5322 message with
// go-mail, for senders that speak raw MIME (SMTP, SES).
package message

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	pkgmailer "github.com/dmitrymomot/mailforge/pkg/mailer"
)

// ErrNoSender is returned when neither the email nor the fallback carries a from address.
var ErrNoSender = errors.New("message: no sender address")

// Build converts email into a go-mail message. fallbackFrom is used when
// email.From is empty. The charset and transfer encoding of the text parts
// follow email.Charset and email.Encoding.
func Build(email *pkgmailer.Email, fallbackFrom string) (*mail.Msg, error) {
	m := mail.NewMsg(
		mail.WithCharset(mail.Charset(orDefault(email.Charset, string(mail.CharsetUTF8)))),
		mail.WithEncoding(encoding(email.Encoding)),
	)

	from := orDefault(email.From, fallbackFrom)
	if from == "" {
		return nil, ErrNoSender
	}
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("message: set from: %w", err)
	}
	if len(email.To) == 0 {
		return nil, pkgmailer.ErrNoRecipient
	}
	if err := m.To(email.To...); err != nil {
		return nil, fmt.Errorf("message: set to: %w", err)
	}
	if len(email.CC) > 0 {
		if err := m.Cc(email.CC...); err != nil {
			return nil, fmt.Errorf("message: set cc: %w", err)
		}
	}
	if len(email.BCC) > 0 {
		if err := m.Bcc(email.BCC...); err != nil {
			return nil, fmt.Errorf("message: set bcc: %w", err)
		}
	}
	if email.ReplyTo != "" {
		if err := m.ReplyTo(email.ReplyTo); err != nil {
			return nil, fmt.Errorf("message: set reply-to: %w", err)
		}
	}

	// Header injection through the subject is not possible once CR/LF are gone.
	m.Subject(strings.NewReplacer("\r", "", "\n", " ").Replace(email.Subject))
	m.SetDate()
	m.SetMessageID()
	for name, value := range email.Headers {
		m.SetGenHeader(mail.Header(name), value)
	}

	switch {
	case email.HTML != "" && email.Text != "":
		m.SetBodyString(mail.TypeTextPlain, email.Text)
		m.AddAlternativeString(mail.TypeTextHTML, email.HTML)
	case email.HTML != "":
		m.SetBodyString(mail.TypeTextHTML, email.HTML)
	default:
		m.SetBodyString(mail.TypeTextPlain, email.Text)
	}

	for _, a := range email.Attachments {
		opts := []mail.FileOption{mail.WithFileContentType(mail.ContentType(orDefault(a.ContentType, "application/octet-stream")))}
		var err error
		if a.ContentID != "" {
			err = m.EmbedReader(a.Filename, bytes.NewReader(a.Content), append(opts, mail.WithFileContentID(a.ContentID))...)
		} else {
			err = m.AttachReader(a.Filename, bytes.NewReader(a.Content), opts...)
		}
		if err != nil {
			return nil, fmt.Errorf("message: attach %s: %w", a.Filename, err)
		}
	}

	return m, nil
}

// Raw builds the message and returns its wire form.
func Raw(email *pkgmailer.Email, fallbackFrom string) ([]byte, error) {
	m, err := Build(email, fallbackFrom)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("message: write: %w", err)
	}
	return buf.Bytes(), nil
}

func encoding(enc string) mail.Encoding {
	switch strings.ToLower(enc) {
	case pkgmailer.EncodingBase64:
		return mail.EncodingB64
	case pkgmailer.EncodingQuotedPrintable:
		return mail.EncodingQP
	default:
		return mail.NoEncoding
	}
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
