// Package ses delivers mail through Amazon SES as raw MIME, so charset,
// transfer encoding, headers and attachments survive unchanged.
package ses

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/dmitrymomot/mailforge/pkg/mailer"
	"github.com/dmitrymomot/mailforge/pkg/mailer/message"
)

var (
	ErrMissingRegion = errors.New("ses: region is required")
	ErrMissingSecret = errors.New("ses: secret access key is required when an access key id is set")
)

// API is the subset of the SES client the sender uses.
type API interface {
	SendRawEmail(ctx context.Context, in *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

// Sender implements mailer.Sender over SES.
type Sender struct {
	api    API
	config Config
}

// New loads AWS configuration and creates a sender.
func New(ctx context.Context, cfg Config) (*Sender, error) {
	if cfg.Region == "" {
		return nil, ErrMissingRegion
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		if cfg.SecretAccessKey == "" {
			return nil, ErrMissingSecret
		}
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("ses: load aws config: %w", err)
	}

	return NewWithClient(ses.NewFromConfig(awsCfg), cfg), nil
}

// NewWithClient creates a sender around an existing client.
func NewWithClient(api API, cfg Config) *Sender {
	return &Sender{api: api, config: cfg}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	raw, err := message.Raw(email, mailer.Recipient(s.config.SenderName, s.config.SenderEmail))
	if err != nil {
		return fmt.Errorf("ses: %w", err)
	}

	in := &ses.SendRawEmailInput{
		RawMessage:   &types.RawMessage{Data: raw},
		Destinations: email.Recipients(),
	}
	if s.config.ConfigurationSet != "" {
		in.ConfigurationSetName = aws.String(s.config.ConfigurationSet)
	}

	if _, err := s.api.SendRawEmail(ctx, in); err != nil {
		return fmt.Errorf("ses: send raw email: %w", err)
	}
	return nil
}
