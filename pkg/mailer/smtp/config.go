package smtp

import "time"

// TLS policies accepted by Config.TLSPolicy.
const (
	TLSMandatory     = "mandatory"
	TLSOpportunistic = "opportunistic"
	TLSNone          = "none"
)

// Config holds SMTP relay settings.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	Host        string        `env:"SMTP_HOST"`
	Username    string        `env:"SMTP_USERNAME"`
	Password    string        `env:"SMTP_PASSWORD"`
	TLSPolicy   string        `env:"SMTP_TLS_POLICY" envDefault:"mandatory"`
	SenderEmail string        `env:"SMTP_FROM_EMAIL"`
	SenderName  string        `env:"SMTP_FROM_NAME"`
	Port        int           `env:"SMTP_PORT" envDefault:"587"`
	Timeout     time.Duration `env:"SMTP_TIMEOUT" envDefault:"15s"`
}
