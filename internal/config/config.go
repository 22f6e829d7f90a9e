// Package config defines the process-wide configuration for Carbon Guardian.
// Configuration is loaded once at startup and immutable thereafter. Values are
// resolved from the OS environment, with a local .env file as a fallback for
// development. A missing required value fails the process immediately.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the top-level configuration for both the API server and the
// sync worker. Sub-components receive only the subsets they need.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Provincial ProvincialConfig
	Retention  RetentionConfig
	Telemetry  TelemetryConfig
	Notify     NotifyConfig
	Worker     WorkerConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `envconfig:"APP_PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds PostgreSQL connection and pool tuning parameters.
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"carbonguardian"`
	Password        string        `envconfig:"DB_PASSWORD" default:"localdev"`
	Database        string        `envconfig:"DB_NAME" default:"carbonguardian"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

// AuthConfig holds credentials-related settings.
type AuthConfig struct {
	// JWTSigningKey signs admin access tokens. The default is only
	// acceptable for local development.
	JWTSigningKey string `envconfig:"JWT_SIGNING_KEY" default:""`
	Issuer        string `envconfig:"JWT_ISSUER" default:"https://api.carbon-guardian.com"`
	Audience      string `envconfig:"JWT_AUDIENCE" default:"carbonguardian-api"`
}

// RateLimitConfig holds API rate limiting settings.
type RateLimitConfig struct {
	// RequestsPerMinute is the per-API-key limit on data endpoints.
	RequestsPerMinute int `envconfig:"API_RATE_LIMIT" default:"60"`
}

// ProvincialConfig holds upstream provincial platform sync settings.
type ProvincialConfig struct {
	BaseURL string `envconfig:"PROVINCIAL_BASE_URL" default:"https://api.fj-carbon.gov.cn/v1"`

	// APIKey authenticates this system to the platform; Token is the
	// extra per-deployment sync credential. Both empty disables sync.
	APIKey string `envconfig:"PROVINCIAL_API_KEY" default:""`
	Token  string `envconfig:"PROVINCIAL_TOKEN" default:""`

	// HeartbeatInterval is the period between heartbeat probes.
	HeartbeatInterval time.Duration `envconfig:"HEARTBEAT_INTERVAL" default:"300s"`

	// BufferSize is the number of buffered records that triggers a push.
	BufferSize int `envconfig:"DATA_BUFFER_SIZE" default:"50"`

	// FlushInterval pushes a partial buffer even when it never fills.
	FlushInterval time.Duration `envconfig:"SYNC_FLUSH_INTERVAL" default:"60s"`

	// ErrorThreshold is the number of consecutive push failures that
	// raises an operational alert.
	ErrorThreshold int `envconfig:"SYNC_ERROR_THRESHOLD" default:"3"`

	// PushTimeout bounds a single upstream round-trip. An attempt that
	// exceeds it is abandoned and counted as a failure.
	PushTimeout time.Duration `envconfig:"SYNC_PUSH_TIMEOUT" default:"10s"`
}

// RetentionConfig holds audit log retention settings.
type RetentionConfig struct {
	// AuditWindow is how long integration log entries are kept before the
	// maintenance job prunes them.
	AuditWindow time.Duration `envconfig:"AUDIT_RETENTION" default:"2160h"` // 90 days

	// PruneInterval is how often the maintenance job runs.
	PruneInterval time.Duration `envconfig:"AUDIT_PRUNE_INTERVAL" default:"1h"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
}

// NotifyConfig holds alert notification fan-out settings.
type NotifyConfig struct {
	// PubSubProjectID and PubSubTopic configure the system-channel alert
	// publisher. Empty project disables publishing.
	PubSubProjectID string `envconfig:"PUBSUB_PROJECT_ID" default:""`
	PubSubTopic     string `envconfig:"PUBSUB_ALERT_TOPIC" default:"carbon-alerts"`
}

// WorkerConfig holds maintenance worker settings.
type WorkerConfig struct {
	// MaintenanceSubscription is the Pub/Sub subscription the worker
	// receives maintenance jobs on. Empty runs the worker on its own
	// interval instead.
	MaintenanceSubscription string `envconfig:"MAINTENANCE_SUBSCRIPTION" default:""`
}

// Load reads configuration from the environment, after loading a local .env
// file when present. Invalid values fail fast.
func Load() (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("API_RATE_LIMIT must be positive, got %d", c.RateLimit.RequestsPerMinute)
	}
	if c.Provincial.BufferSize <= 0 {
		return fmt.Errorf("DATA_BUFFER_SIZE must be positive, got %d", c.Provincial.BufferSize)
	}
	if c.Provincial.ErrorThreshold <= 0 {
		return fmt.Errorf("SYNC_ERROR_THRESHOLD must be positive, got %d", c.Provincial.ErrorThreshold)
	}
	if c.Provincial.HeartbeatInterval <= 0 {
		return fmt.Errorf("HEARTBEAT_INTERVAL must be positive")
	}
	return nil
}
