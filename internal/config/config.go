package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // TIME_ZONE must resolve on images without zoneinfo

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string `mapstructure:"PORT"`
	GinMode                          string `mapstructure:"GIN_MODE"`
	LogLevel                         string `mapstructure:"LOG_LEVEL"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	PIIEncryptionKey                 string `mapstructure:"PII_ENCRYPTION_KEY"` // Base64 encoded, 32 bytes
	ClientURL                        string `mapstructure:"CLIENT_URL"`
	TimeZone                         string `mapstructure:"TIME_ZONE"` // IANA name, used for calendar days and time of day

	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	EventBroker   string `mapstructure:"EVENT_BROKER"` // none, log, rabbitmq or kafka
	RabbitMQURL   string `mapstructure:"RABBITMQ_URL"`
	RabbitMQQueue string `mapstructure:"RABBITMQ_QUEUE"`
	KafkaBrokers  string `mapstructure:"KAFKA_BROKERS"` // comma separated
	KafkaTopic    string `mapstructure:"KAFKA_TOPIC"`

	SMTPHost   string `mapstructure:"SMTP_HOST"`
	SMTPPort   string `mapstructure:"SMTP_PORT"`
	SMTPUser   string `mapstructure:"SMTP_USER"`
	SMTPPass   string `mapstructure:"SMTP_PASS"`
	MailSender string `mapstructure:"MAIL_SENDER"`

	PhoneVerificationCode string `mapstructure:"PHONE_VERIFICATION_CODE"`
}

var envKeys = []string{
	"PORT", "GIN_MODE", "LOG_LEVEL",
	"FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"PII_ENCRYPTION_KEY", "CLIENT_URL", "TIME_ZONE",
	"GEMINI_API_KEY", "GEMINI_MODEL",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"EVENT_BROKER", "RABBITMQ_URL", "RABBITMQ_QUEUE", "KAFKA_BROKERS", "KAFKA_TOPIC",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "MAIL_SENDER",
	"PHONE_VERIFICATION_CODE",
}

// LoadConfig loads configuration from environment variables using Viper.
// Outside release mode a local .env file is read first, if present.
func LoadConfig() (*Config, error) {
	if os.Getenv("GIN_MODE") != "release" {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CLIENT_URL", "http://localhost:9002")
	v.SetDefault("TIME_ZONE", "Asia/Kolkata")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("EVENT_BROKER", "log")
	v.SetDefault("RABBITMQ_QUEUE", "wheelsup.events")
	v.SetDefault("KAFKA_TOPIC", "wheelsup.events")
	v.SetDefault("SMTP_PORT", "2525")
	v.SetDefault("PHONE_VERIFICATION_CODE", "123456")

	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and cross-field constraints.
func (c *Config) Validate() error {
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if c.PIIEncryptionKey == "" {
		return errors.New("PII_ENCRYPTION_KEY is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch strings.ToLower(c.EventBroker) {
	case "", "none", "log":
	case "rabbitmq":
		if c.RabbitMQURL == "" {
			return errors.New("RABBITMQ_URL is required when EVENT_BROKER=rabbitmq")
		}
	case "kafka":
		if c.KafkaBrokers == "" {
			return errors.New("KAFKA_BROKERS is required when EVENT_BROKER=kafka")
		}
	default:
		return errors.New("EVENT_BROKER must be one of none, log, rabbitmq, kafka")
	}
	return nil
}

// KafkaBrokerList splits KAFKA_BROKERS into addresses.
func (c *Config) KafkaBrokerList() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// MailEnabled reports whether SMTP credentials are configured.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != "" && c.MailSender != ""
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}

// ClientOrigins splits CLIENT_URL into the allowed browser origins.
func (c *Config) ClientOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.ClientURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Location loads TIME_ZONE. Empty means UTC.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("TIME_ZONE %q is not a valid zone: %w", c.TimeZone, err)
	}
	return loc, nil
}
