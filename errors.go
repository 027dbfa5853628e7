package mailforge

import "errors"

var (
	// ErrNoRecipient is recorded when a dispatch is aborted because no
	// valid recipient survived sanitization.
	ErrNoRecipient = errors.New("mailforge: no valid recipient")

	// ErrInvalidSendTime is returned by SendLater when the time expression
	// cannot be turned into an absolute time.
	ErrInvalidSendTime = errors.New("mailforge: invalid send time")

	// ErrSchedulerNotConfigured is returned by SendLater when neither a
	// scheduler nor an alternative scheduler is available.
	ErrSchedulerNotConfigured = errors.New("mailforge: scheduler not configured")

	ErrListenerPanic  = errors.New("mailforge: listener panicked")
	ErrTransportPanic = errors.New("mailforge: transport panicked")
	ErrNilMessage     = errors.New("mailforge: nil message")

	// ErrNotDelivered is returned by scheduled callbacks whose send reported false,
	// so schedulers with retry support can act on it.
	ErrNotDelivered = errors.New("mailforge: message not delivered")
)
