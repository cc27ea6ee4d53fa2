// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// RegistryConfig provides settings for the practice-management registry API.
type RegistryConfig interface {
	GetRegistryBaseURL() string
}

// SecretsConfig provides settings for per-tenant credential lookup.
type SecretsConfig interface {
	GetSecretsEnvPrefix() string
}

// NotificationConfig provides settings for the confirmation email dispatch.
type NotificationConfig interface {
	GetNotifyEndpointURL() string
	GetNotifyFromEmail() string
	GetNotifyCCEmails() []string
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
}

// TelemetryConfig provides settings for the telemetry event sink.
type TelemetryConfig interface {
	GetRedisURL() string
	GetTelemetryStream() string
	IsTelemetryEnabled() bool
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// ArchiveConfig provides settings for the intake submission archive.
type ArchiveConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOArchiveBucket() string
	IsArchiveEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env      string
	HTTPAddr string

	DatabaseURL string

	JWTAccessSecret string

	CORSOrigins    []string
	CORSAllowAll   bool
	CORSAllowCreds bool

	RegistryBaseURL  string
	SecretsEnvPrefix string

	NotifyEndpointURL string
	NotifyFromEmail   string
	NotifyCCEmails    []string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string

	RedisURL         string
	RedisTLSInsecure bool
	TelemetryStream  string

	AsynqQueueName   string
	AsynqConcurrency int

	MinIOEndpoint      string
	MinIOAccessKey     string
	MinIOSecretKey     string
	MinIOUseSSL        bool
	MinIOArchiveBucket string
}

// Load reads configuration from the environment, applying defaults.
// A .env file is honoured when present (local development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	smtpPort, err := intEnv("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	asynqConcurrency, err := intEnv("ASYNQ_CONCURRENCY", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTAccessSecret: getEnv("JWT_ACCESS_SECRET", ""),

		CORSOrigins:    splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200")),
		CORSAllowAll:   strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true"),
		CORSAllowCreds: strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),

		RegistryBaseURL:  getEnv("REGISTRY_BASE_URL", "https://eu.app.clio.com"),
		SecretsEnvPrefix: getEnv("SECRETS_ENV_PREFIX", "TENANT"),

		NotifyEndpointURL: getEnv("NOTIFY_ENDPOINT_URL", ""),
		NotifyFromEmail:   getEnv("NOTIFY_FROM_EMAIL", "automation@example.com"),
		NotifyCCEmails:    splitCSV(getEnv("NOTIFY_CC_EMAILS", "")),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          smtpPort,
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),

		RedisURL:         getEnv("REDIS_URL", ""),
		RedisTLSInsecure: strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		TelemetryStream:  getEnv("TELEMETRY_STREAM", "intake.telemetry"),

		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency: asynqConcurrency,

		MinIOEndpoint:      getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:     getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:        strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOArchiveBucket: getEnv("MINIO_BUCKET_INTAKE_ARCHIVE", "intake-archive"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" && !strings.EqualFold(cfg.Env, "development") {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required outside development")
	}

	return cfg, nil
}

// =============================================================================
// Interface implementations
// =============================================================================

func (c *Config) GetEnv() string             { return c.Env }
func (c *Config) GetDatabaseURL() string     { return c.DatabaseURL }
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

func (c *Config) GetRegistryBaseURL() string  { return c.RegistryBaseURL }
func (c *Config) GetSecretsEnvPrefix() string { return c.SecretsEnvPrefix }

func (c *Config) GetNotifyEndpointURL() string { return c.NotifyEndpointURL }
func (c *Config) GetNotifyFromEmail() string   { return c.NotifyFromEmail }
func (c *Config) GetNotifyCCEmails() []string  { return c.NotifyCCEmails }
func (c *Config) GetSMTPHost() string          { return c.SMTPHost }
func (c *Config) GetSMTPPort() int             { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string      { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string      { return c.SMTPPassword }

func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }
func (c *Config) GetTelemetryStream() string { return c.TelemetryStream }
func (c *Config) IsTelemetryEnabled() bool   { return c.RedisURL != "" }

func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

func (c *Config) GetMinIOEndpoint() string      { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string     { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string     { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool          { return c.MinIOUseSSL }
func (c *Config) GetMinIOArchiveBucket() string { return c.MinIOArchiveBucket }
func (c *Config) IsArchiveEnabled() bool        { return c.MinIOEndpoint != "" }

// =============================================================================
// Helpers
// =============================================================================

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
