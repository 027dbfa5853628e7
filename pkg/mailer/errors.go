package mailer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("email must have at least one recipient")

	// ErrAttachmentUnreadable indicates an attachment path could not be read.
	ErrAttachmentUnreadable = errors.New("attachment cannot be read")

	ErrTemplateNotFound   = errors.New("template not found")
	ErrLayoutNotFound     = errors.New("layout not found")
	ErrRenderFailed       = errors.New("failed to render template")
	ErrSendFailed         = errors.New("failed to send email")
	ErrInvalidFrontmatter = errors.New("invalid frontmatter")
)

// DeliveryError is fired through the mail_failed action when a message
// could not be composed or delivered.
type DeliveryError struct {
	Err     error
	Subject string
	To      []string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("mailer: delivery to %s failed: %v", strings.Join(e.To, ","), e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
