package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. SLOTBOOK_DATABASE_DSN.
const EnvPrefix = "SLOTBOOK"

// Config represents the overall application configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Schedule     ScheduleConfig     `yaml:"schedule"`
	Booking      BookingConfig      `yaml:"booking"`
	WorkerPool   WorkerPoolConfig   `yaml:"worker_pool"`
	Notification NotificationConfig `yaml:"notification"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	TrustedProxies  []string `yaml:"trusted_proxies"`
}

// CacheTTL returns the availability cache lifetime.
func (s ServerConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// DatabaseConfig holds the database connection configuration.
// A DSN starting with "sqlite:" opens a SQLite database; anything else is handed to postgres.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"`
}

// ScheduleConfig points at the published schedule (date -> time labels).
type ScheduleConfig struct {
	Source              string            `yaml:"source"` // file path or http(s) URL
	SyncOnStart         bool              `yaml:"sync_on_start"`
	SyncIntervalSeconds int               `yaml:"sync_interval_seconds"`
	SyncInterval        time.Duration     `yaml:"-"`
	HTTPProxy           string            `yaml:"http_proxy"`
	Headers             map[string]string `yaml:"headers"`
}

// BookingConfig tunes claim validation.
type BookingConfig struct {
	DefaultCountryCode string `yaml:"default_country_code"`
	MaxNoteLength      int    `yaml:"max_note_length"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size"`
	QueueSize int `yaml:"queue_size"`
}

// NotificationConfig groups the post-booking channels.
type NotificationConfig struct {
	TimeoutSeconds int            `yaml:"timeout_seconds"`
	Timeout        time.Duration  `yaml:"-"`
	WhatsApp       WhatsAppConfig `yaml:"whatsapp"`
	Email          EmailConfig    `yaml:"email"`
	Push           PushConfig     `yaml:"push"`
}

// WhatsAppConfig holds the Twilio credentials for the confirmation message.
type WhatsAppConfig struct {
	Enabled    bool   `yaml:"enabled"`
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	From       string `yaml:"from"`
}

// EmailConfig holds the EmailJS service and the two templates (customer, owner).
type EmailConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Endpoint         string `yaml:"endpoint"`
	ServiceID        string `yaml:"service_id"`
	PublicKey        string `yaml:"public_key"`
	PrivateKey       string `yaml:"private_key"`
	CustomerTemplate string `yaml:"customer_template"`
	OwnerTemplate    string `yaml:"owner_template"`
	OwnerEmail       string `yaml:"owner_email"`
}

// PushConfig holds the VAPID keys for operator web push notifications.
type PushConfig struct {
	Enabled    bool   `yaml:"enabled"`
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// LoggingConfig selects the zap preset and optional rotated log file.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	File        string `yaml:"file"`
	MaxSizeMB   int    `yaml:"max_size_mb"`
	MaxBackups  int    `yaml:"max_backups"`
	MaxAgeDays  int    `yaml:"max_age_days"`
}

// Load reads the configuration from the given path, then applies environment overrides.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg, viper.New())
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Schedule.SyncIntervalSeconds > 0 {
		cfg.Schedule.SyncInterval = time.Duration(cfg.Schedule.SyncIntervalSeconds) * time.Second
	}

	if cfg.Booking.DefaultCountryCode == "" {
		cfg.Booking.DefaultCountryCode = "55"
	}
	if cfg.Booking.MaxNoteLength <= 0 {
		cfg.Booking.MaxNoteLength = 1000
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		cfg.WorkerPool.QueueSize = 64
	}

	if cfg.Notification.TimeoutSeconds <= 0 {
		cfg.Notification.TimeoutSeconds = 15
	}
	cfg.Notification.Timeout = time.Duration(cfg.Notification.TimeoutSeconds) * time.Second

	if cfg.Notification.Email.Endpoint == "" {
		cfg.Notification.Email.Endpoint = "https://api.emailjs.com/api/v1.0/email/send"
	}
	if cfg.Notification.Push.TTL <= 0 {
		cfg.Notification.Push.TTL = 3600
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}
}

// applyEnv overlays SLOTBOOK_* variables on top of the file so secrets can stay out of it.
func applyEnv(cfg *Config, v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	str := func(key string, dst *string) {
		if s := v.GetString(key); s != "" {
			*dst = s
		}
	}
	num := func(key string, dst *int) {
		if v.GetString(key) != "" {
			*dst = v.GetInt(key)
		}
	}
	flag := func(key string, dst *bool) {
		if v.GetString(key) != "" {
			*dst = v.GetBool(key)
		}
	}

	num("server.port", &cfg.Server.Port)
	if origins := v.GetString("server.allowed_origins"); origins != "" {
		var list []string
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				list = append(list, o)
			}
		}
		cfg.Server.AllowedOrigins = list
	}

	str("database.dsn", &cfg.Database.DSN)
	str("schedule.source", &cfg.Schedule.Source)
	str("booking.default_country_code", &cfg.Booking.DefaultCountryCode)

	flag("whatsapp.enabled", &cfg.Notification.WhatsApp.Enabled)
	str("whatsapp.account_sid", &cfg.Notification.WhatsApp.AccountSID)
	str("whatsapp.auth_token", &cfg.Notification.WhatsApp.AuthToken)
	str("whatsapp.from", &cfg.Notification.WhatsApp.From)

	flag("email.enabled", &cfg.Notification.Email.Enabled)
	str("email.service_id", &cfg.Notification.Email.ServiceID)
	str("email.public_key", &cfg.Notification.Email.PublicKey)
	str("email.private_key", &cfg.Notification.Email.PrivateKey)

	flag("push.enabled", &cfg.Notification.Push.Enabled)
	str("push.vapid_public_key", &cfg.Notification.Push.PublicKey)
	str("push.vapid_private_key", &cfg.Notification.Push.PrivateKey)

	str("logging.level", &cfg.Logging.Level)
}
