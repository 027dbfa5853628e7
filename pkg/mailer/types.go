package mailer

import "fmt"

// Transfer encodings understood by the senders.
const (
	EncodingBase64          = "base64"
	Encoding8Bit            = "8bit"
	EncodingQuotedPrintable = "quoted-printable"
)

// Tags represents email tags/categories that can be either presence-only
// (using struct{}{}) or key-value pairs (using string values).
type Tags map[string]any

// SimpleTags creates presence-only tags from a list of tag names.
func SimpleTags(names ...string) Tags {
	t := make(Tags, len(names))
	for _, n := range names {
		t[n] = struct{}{}
	}
	return t
}

// Recipient formats a name and email into RFC 5322 address format.
// Returns "Name <email>" if name is provided, otherwise just email.
func Recipient(name, email string) string {
	if name == "" || email == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Email is a fully-resolved message handed to a Sender.
// Transport builds it from the raw (to, subject, body, headers, attachments) call.
type Email struct {
	Headers     map[string]string // Non-address headers, canonical keys
	Tags        Tags
	Subject     string
	HTML        string
	Text        string
	From        string // "Name <email>" or bare address; empty lets the sender pick its default
	ReplyTo     string
	Charset     string
	Encoding    string // Content-Transfer-Encoding for text parts
	To          []string
	CC          []string
	BCC         []string
	Attachments []Attachment
}

// Recipients returns every envelope recipient: To, CC and BCC in that order.
func (e *Email) Recipients() []string {
	out := make([]string, 0, len(e.To)+len(e.CC)+len(e.BCC))
	out = append(out, e.To...)
	out = append(out, e.CC...)
	return append(out, e.BCC...)
}

// Attachment represents an email attachment.
type Attachment struct {
	Filename    string
	ContentType string
	ContentID   string // Set for inline attachments
	Content     []byte
}
