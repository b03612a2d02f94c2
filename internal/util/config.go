package util

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	AllowedOrigins      []string      `mapstructure:"ALLOWED_ORIGINS"`
	DatabaseURL         string        `mapstructure:"DATABASE_URL"`
	HTTPServerAddress   string        `mapstructure:"HTTP_SERVER_ADDRESS"`
	TokenSecretKey      string        `mapstructure:"TOKEN_SECRET_KEY"`
	AccessTokenDuration time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
	RedisServerAddress  string        `mapstructure:"REDIS_SERVER_ADDRESS"`

	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	CloudinaryURL           string `mapstructure:"CLOUDINARY_URL"`

	SMTPHost           string `mapstructure:"SMTP_HOST"`
	SMTPPort           int    `mapstructure:"SMTP_PORT"`
	SMTPUsername       string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword       string `mapstructure:"SMTP_PASSWORD"`
	EmailSenderName    string `mapstructure:"EMAIL_SENDER_NAME"`
	EmailSenderAddress string `mapstructure:"EMAIL_SENDER_ADDRESS"`

	SMSGatewayURL    string `mapstructure:"SMS_GATEWAY_URL"`
	SMSGatewayAPIKey string `mapstructure:"SMS_GATEWAY_API_KEY"`
	DiscordBotToken  string `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordChannelID string `mapstructure:"DISCORD_CHANNEL_ID"`

	WebPushRelayURL    string `mapstructure:"WEB_PUSH_RELAY_URL"`
	WebPushRelayAPIKey string `mapstructure:"WEB_PUSH_RELAY_API_KEY"`

	WebhookSigningKey string `mapstructure:"WEBHOOK_SIGNING_KEY"`

	ChannelTimeout       time.Duration `mapstructure:"CHANNEL_TIMEOUT"`
	RecipientConcurrency int           `mapstructure:"RECIPIENT_CONCURRENCY"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	// Set defaults for non-sensitive config
	viper.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	viper.SetDefault("HTTP_SERVER_ADDRESS", "0.0.0.0:8080")
	viper.SetDefault("ACCESS_TOKEN_DURATION", "24h")
	viper.SetDefault("SMTP_HOST", "smtp.gmail.com")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("EMAIL_SENDER_NAME", "EduHub")
	viper.SetDefault("CHANNEL_TIMEOUT", "2m")
	viper.SetDefault("RECIPIENT_CONCURRENCY", 8)

	// Prefer environment variables over config file
	viper.AutomaticEnv()

	// Load config file
	viper.SetConfigFile(path)
	if err = viper.ReadInConfig(); err != nil {
		return
	}

	// Unmarshal config into struct
	err = viper.UnmarshalExact(&config)
	if err != nil {
		return
	}

	// Validate required configuration
	err = validateConfig(config)
	return
}

func validateConfig(config Config) error {
	if config.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if config.TokenSecretKey == "" {
		return fmt.Errorf("TOKEN_SECRET_KEY is required")
	}
	if config.RedisServerAddress == "" {
		return fmt.Errorf("REDIS_SERVER_ADDRESS is required")
	}
	if config.FirebaseCredentialsFile == "" {
		return fmt.Errorf("FIREBASE_CREDENTIALS_FILE is required")
	}
	if config.SMTPUsername == "" || config.SMTPPassword == "" {
		return fmt.Errorf("SMTP_USERNAME and SMTP_PASSWORD are required")
	}
	if config.EmailSenderAddress == "" {
		return fmt.Errorf("EMAIL_SENDER_ADDRESS is required")
	}
	if config.WebhookSigningKey == "" {
		return fmt.Errorf("WEBHOOK_SIGNING_KEY is required")
	}

	return nil
}
