package config

import (
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"inkwell"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"inkwell"`

	// ProjectURL is the public base URL of the platform. File URLs and the
	// document callback URL are derived from it, and the identity verifier
	// is reached under it at /auth/v1/user.
	ProjectURL string `envconfig:"PROJECT_URL"`

	// AuthAnonKey is the caller-scoped credential forwarded to the identity
	// verifier.
	AuthAnonKey string `envconfig:"AUTH_ANON_KEY"`

	// Processor endpoints, one per job kind. Checked at call time: a missing
	// value is a deployment error and yields 500 without touching any status.
	DocumentWebhookURL   string `envconfig:"DOCUMENT_WEBHOOK_URL"`
	SourcesWebhookURL    string `envconfig:"SOURCES_WEBHOOK_URL"`
	GenerationWebhookURL string `envconfig:"GENERATION_WEBHOOK_URL"`
	ChatWebhookURL       string `envconfig:"CHAT_WEBHOOK_URL"`
	WebhookSecret        string `envconfig:"WEBHOOK_SECRET"`

	NSQDHost string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQDHTTP string `envconfig:"NSQD_HTTP" default:"nsqd:4151"`

	ServerPort    int    `envconfig:"SERVER_PORT" default:"8081"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Env vars may be set in the shell; .env files are optional.
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	_ = godotenv.Load(filepath.Join(cwd, "../../.env"))

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DBHost, validation.Required),
		validation.Field(&c.DBPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.DBUser, validation.Required),
		validation.Field(&c.DBName, validation.Required),
		validation.Field(&c.ServerPort, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}
