package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/backend/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBHost)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, 8081, cfg.ServerPort)
	assert.Equal(t, "file://migrations", cfg.MigrationPath)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("PROJECT_URL", "https://example.test")
	t.Setenv("DOCUMENT_WEBHOOK_URL", "https://hooks.example.test/document")
	t.Setenv("WEBHOOK_SECRET", "s3cret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "https://example.test", cfg.ProjectURL)
	assert.Equal(t, "https://hooks.example.test/document", cfg.DocumentWebhookURL)
	assert.Equal(t, "s3cret", cfg.WebhookSecret)
}

func TestLoad_WebhooksOptionalAtStartup(t *testing.T) {
	// Missing processor endpoints are a call-time error, never a startup one.
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.GenerationWebhookURL)
	assert.Empty(t, cfg.WebhookSecret)
}

func TestValidate(t *testing.T) {
	t.Run("MissingDBHost", func(t *testing.T) {
		cfg := &config.Config{DBPort: 5432, DBUser: "u", DBName: "n", ServerPort: 8081}
		assert.Error(t, cfg.Validate())
	})

	t.Run("PortOutOfRange", func(t *testing.T) {
		cfg := &config.Config{DBHost: "h", DBPort: 70000, DBUser: "u", DBName: "n", ServerPort: 8081}
		assert.Error(t, cfg.Validate())
	})

	t.Run("Valid", func(t *testing.T) {
		cfg := &config.Config{DBHost: "h", DBPort: 5432, DBUser: "u", DBName: "n", ServerPort: 8081}
		assert.NoError(t, cfg.Validate())
	})
}
