package resend

// Config holds Resend provider settings.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	APIKey      string `env:"RESEND_API_KEY"`
	SenderEmail string `env:"RESEND_FROM_EMAIL"`
	SenderName  string `env:"RESEND_FROM_NAME"`
	// BaseURL overrides the API endpoint, mostly for tests.
	BaseURL string `env:"RESEND_BASE_URL"`
}
