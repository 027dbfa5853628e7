package ses

// Config holds AWS SES settings. Static keys are optional; without them
// the default AWS credential chain is used.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	Region           string `env:"SES_REGION" envDefault:"us-east-1"`
	AccessKeyID      string `env:"SES_ACCESS_KEY_ID"`
	SecretAccessKey  string `env:"SES_SECRET_ACCESS_KEY"`
	SessionToken     string `env:"SES_SESSION_TOKEN"`
	ConfigurationSet string `env:"SES_CONFIGURATION_SET"`
	SenderEmail      string `env:"SES_FROM_EMAIL"`
	SenderName       string `env:"SES_FROM_NAME"`
}
