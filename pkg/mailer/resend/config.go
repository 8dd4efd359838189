package resend

// Config holds Resend email provider configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	APIKey      string `env:"RESEND_API_KEY,required"`
	SenderEmail string `env:"RESEND_FROM_EMAIL" envDefault:"onboarding@resend.dev"`
	SenderName  string `env:"RESEND_FROM_NAME" envDefault:"Postcard"`
}

// From returns the default sender address, e.g. "Postcard <onboarding@resend.dev>".
func (c Config) From() string {
	if c.SenderName == "" {
		return c.SenderEmail
	}
	return c.SenderName + " <" + c.SenderEmail + ">"
}
