package mailforge

import "slices"

// MailParams is the immutable payload handed to the transport. The With
// methods return modified copies; accessors return copies of slices.
type MailParams struct {
	to          string
	subject     string
	body        string
	locale      string
	headers     []string
	attachments []string
}

// NewMailParams creates a payload. to is the comma-joined recipient list.
func NewMailParams(to, subject, body string, headers, attachments []string, locale string) *MailParams {
	return &MailParams{
		to:          to,
		subject:     subject,
		body:        body,
		locale:      locale,
		headers:     slices.Clone(headers),
		attachments: slices.Clone(attachments),
	}
}

func (p *MailParams) To() string            { return p.to }
func (p *MailParams) Subject() string       { return p.subject }
func (p *MailParams) Body() string          { return p.body }
func (p *MailParams) Locale() string        { return p.locale }
func (p *MailParams) Headers() []string     { return slices.Clone(p.headers) }
func (p *MailParams) Attachments() []string { return slices.Clone(p.attachments) }

func (p *MailParams) WithTo(to string) *MailParams {
	c := p.clone()
	c.to = to
	return c
}

func (p *MailParams) WithSubject(subject string) *MailParams {
	c := p.clone()
	c.subject = subject
	return c
}

func (p *MailParams) WithBody(body string) *MailParams {
	c := p.clone()
	c.body = body
	return c
}

func (p *MailParams) WithLocale(locale string) *MailParams {
	c := p.clone()
	c.locale = locale
	return c
}

func (p *MailParams) WithHeaders(headers []string) *MailParams {
	c := p.clone()
	c.headers = slices.Clone(headers)
	return c
}

func (p *MailParams) WithAttachments(attachments []string) *MailParams {
	c := p.clone()
	c.attachments = slices.Clone(attachments)
	return c
}

func (p *MailParams) clone() *MailParams {
	c := *p
	c.headers = slices.Clone(p.headers)
	c.attachments = slices.Clone(p.attachments)
	return &c
}
