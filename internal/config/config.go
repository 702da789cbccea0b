// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :3001).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// Env is the application environment (e.g. "development", "production"). Production enables secure cookies
	// and requires a real SESSION_SECRET.
	Env string `mapstructure:"APP_ENV"`
	// AppURL is the public base URL used to build links in outgoing mail (e.g. the password reset link).
	AppURL string `mapstructure:"APP_URL"`

	// SessionSecret signs the session cookie (HS256).
	SessionSecret string `mapstructure:"SESSION_SECRET"`
	// SessionTTL is the session lifetime (e.g. "24h").
	SessionTTL string `mapstructure:"SESSION_TTL"`
	// SessionCookieName is the name of the session cookie.
	SessionCookieName string `mapstructure:"SESSION_COOKIE_NAME"`
	// SessionStore selects the session backend: "postgres" (default) or "memory". Memory sessions are lost on
	// restart and are not shared between instances.
	SessionStore string `mapstructure:"SESSION_STORE"`
	// SessionPurgeInterval is how often cmd/worker deletes expired sessions (e.g. "1h").
	SessionPurgeInterval string `mapstructure:"SESSION_PURGE_INTERVAL"`

	// EmailHost, EmailPort, EmailSecure configure the SMTP relay. Port 465 always implies implicit TLS.
	EmailHost   string `mapstructure:"EMAIL_HOST"`
	EmailPort   int    `mapstructure:"EMAIL_PORT"`
	EmailSecure bool   `mapstructure:"EMAIL_SECURE"`
	// EmailUser and EmailPassword are the SMTP credentials. Without them mail delivery fails.
	EmailUser     string `mapstructure:"EMAIL_USER"`
	EmailPassword string `mapstructure:"EMAIL_PASSWORD"`
	// EmailFrom is the sender address; defaults to EmailUser when empty.
	EmailFrom     string `mapstructure:"EMAIL_FROM"`
	EmailFromName string `mapstructure:"EMAIL_FROM_NAME"`
	// ContactInbox receives contact form notifications. Empty disables the notification.
	ContactInbox string `mapstructure:"CONTACT_INBOX"`

	// StorageBucket is the object storage bucket for site media.
	StorageBucket string `mapstructure:"STORAGE_BUCKET"`
	S3Region      string `mapstructure:"S3_REGION"`
	// S3Endpoint is the S3-compatible endpoint (e.g. MinIO http://localhost:9000). Empty uses AWS.
	S3Endpoint  string `mapstructure:"S3_ENDPOINT"`
	S3AccessKey string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY"`
	// S3PublicURL is the base URL for public object links; defaults to <S3_ENDPOINT>/<bucket>.
	S3PublicURL string `mapstructure:"S3_PUBLIC_URL"`

	// OTLPEndpoint is the OpenTelemetry collector endpoint. Empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
}

const minProductionSecretLen = 16

// Session backends accepted by SESSION_STORE.
const (
	SessionStorePostgres = "postgres"
	SessionStoreMemory   = "memory"
)

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":3001")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_URL", "http://localhost:3000")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_COOKIE_NAME", "lighthouse.sid")
	v.SetDefault("SESSION_STORE", SessionStorePostgres)
	v.SetDefault("SESSION_PURGE_INTERVAL", "1h")
	v.SetDefault("EMAIL_HOST", "smtp.gmail.com")
	v.SetDefault("EMAIL_PORT", 587)
	v.SetDefault("EMAIL_SECURE", false)
	v.SetDefault("EMAIL_USER", "")
	v.SetDefault("EMAIL_PASSWORD", "")
	v.SetDefault("EMAIL_FROM", "")
	v.SetDefault("EMAIL_FROM_NAME", "Lighthouse Restaurant")
	v.SetDefault("CONTACT_INBOX", "")
	v.SetDefault("STORAGE_BUCKET", "lighthouse-assets")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_PUBLIC_URL", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	cfg.AppURL = strings.TrimRight(strings.TrimSpace(cfg.AppURL), "/")
	if cfg.AppURL == "" {
		return nil, errors.New("config: APP_URL must be set")
	}
	if cfg.IsProduction() && len(cfg.SessionSecret) < minProductionSecretLen {
		return nil, errors.New("config: SESSION_SECRET must be at least 16 characters when APP_ENV=production")
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "dev-session-secret"
	}
	cfg.SessionStore = strings.ToLower(strings.TrimSpace(cfg.SessionStore))
	if cfg.SessionStore != SessionStorePostgres && cfg.SessionStore != SessionStoreMemory {
		return nil, errors.New("config: SESSION_STORE must be postgres or memory")
	}
	if cfg.EmailPort <= 0 || cfg.EmailPort > 65535 {
		return nil, errors.New("config: EMAIL_PORT must be between 1 and 65535")
	}
	if cfg.EmailPort == 465 {
		cfg.EmailSecure = true
	}
	if cfg.EmailFrom == "" {
		cfg.EmailFrom = cfg.EmailUser
	}
	if cfg.StorageBucket == "" {
		return nil, errors.New("config: STORAGE_BUCKET must be set")
	}

	return &cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

// SessionLifetime parses SessionTTL as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) SessionLifetime() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// PurgeInterval parses SessionPurgeInterval as a time.Duration. Returns 1h if unset or invalid.
func (c *Config) PurgeInterval() time.Duration {
	d, err := time.ParseDuration(c.SessionPurgeInterval)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// MailConfigured reports whether SMTP credentials are present.
func (c *Config) MailConfigured() bool {
	return c != nil && c.EmailUser != "" && c.EmailPassword != ""
}

// PublicStorageURL returns the base URL for public object links. Falls back to <S3_ENDPOINT>/<bucket>
// and then to the virtual-hosted AWS URL.
func (c *Config) PublicStorageURL() string {
	if c == nil {
		return ""
	}
	if u := strings.TrimRight(strings.TrimSpace(c.S3PublicURL), "/"); u != "" {
		return u
	}
	if e := strings.TrimRight(strings.TrimSpace(c.S3Endpoint), "/"); e != "" {
		return e + "/" + c.StorageBucket
	}
	return "https://" + c.StorageBucket + ".s3." + c.S3Region + ".amazonaws.com"
}
