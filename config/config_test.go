package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "database:\n  dsn: \"sqlite:file::memory:\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.CacheTTL())
	assert.Equal(t, "55", cfg.Booking.DefaultCountryCode)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, 64, cfg.WorkerPool.QueueSize)
	assert.Equal(t, 15*time.Second, cfg.Notification.Timeout)
	assert.Equal(t, "https://api.emailjs.com/api/v1.0/email/send", cfg.Notification.Email.Endpoint)
	assert.Equal(t, time.Duration(0), cfg.Schedule.SyncInterval)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8081
  allowed_origins: ["https://agenda.example.com"]
schedule:
  source: "https://example.com/horarios.json"
  sync_interval_seconds: 300
worker_pool:
  size: 4
notification:
  email:
    enabled: true
    customer_template: "template_customer"
    owner_template: "template_owner"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, []string{"https://agenda.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Schedule.SyncInterval)
	assert.Equal(t, 4, cfg.WorkerPool.Size)
	assert.True(t, cfg.Notification.Email.Enabled)
	assert.Equal(t, "template_owner", cfg.Notification.Email.OwnerTemplate)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "database:\n  dsn: \"from-file\"\nnotification:\n  whatsapp:\n    auth_token: \"file-token\"\n")

	t.Setenv("SLOTBOOK_DATABASE_DSN", "sqlite:file::memory:")
	t.Setenv("SLOTBOOK_WHATSAPP_AUTH_TOKEN", "env-token")
	t.Setenv("SLOTBOOK_WHATSAPP_ENABLED", "true")
	t.Setenv("SLOTBOOK_SERVER_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite:file::memory:", cfg.Database.DSN)
	assert.Equal(t, "env-token", cfg.Notification.WhatsApp.AuthToken)
	assert.True(t, cfg.Notification.WhatsApp.Enabled)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_AllowedOriginsEnvIsTrimmed(t *testing.T) {
	path := writeConfig(t, "server:\n  allowed_origins: [\"https://file\"]\n")
	t.Setenv("SLOTBOOK_SERVER_ALLOWED_ORIGINS", "https://a, https://b,, ")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a", "https://b"}, cfg.Server.AllowedOrigins)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
