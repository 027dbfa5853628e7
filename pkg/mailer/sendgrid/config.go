package sendgrid

// Config holds SendGrid settings.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	APIKey      string `env:"SENDGRID_API_KEY"`
	Host        string `env:"SENDGRID_HOST" envDefault:"https://api.sendgrid.com"`
	SenderEmail string `env:"SENDGRID_FROM_EMAIL"`
	SenderName  string `env:"SENDGRID_FROM_NAME"`
}
