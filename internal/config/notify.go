package config

// NotifyConfig represents secondary notification channels.
// The bot's own channel is always notified.
type NotifyConfig struct {
	Webhook DiscordWebhookConfig `mapstructure:"webhook"`
}

// DiscordWebhookConfig represents Discord webhook notification configuration
type DiscordWebhookConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url" validate:"omitempty,url"`
	Username   string `mapstructure:"username"`
	AvatarURL  string `mapstructure:"avatar_url" validate:"omitempty,url"`
}
