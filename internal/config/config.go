// Package config holds the application configuration, loaded from
// environment variables with the TOUCANS_ prefix.
package config

import (
	"fmt"
	"time"

	"github.com/toucanlabs/toucans-api/internal/env"
)

// Config holds the application configuration.
type Config struct {
	// Server configuration
	HTTPPort string `env:"TOUCANS_HTTP_PORT" default:"8080"`
	Env      string `env:"TOUCANS_ENV" default:"dev"` // dev, prod

	DB       DBConfig
	Retry    RetryConfig
	Events   EventsConfig
	Otel     OtelConfig
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	DSN             string        `env:"TOUCANS_DB_DSN"`
	MaxOpenConns    int           `env:"TOUCANS_DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `env:"TOUCANS_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `env:"TOUCANS_DB_CONN_MAX_LIFETIME" default:"5m"`
	ConnMaxIdleTime time.Duration `env:"TOUCANS_DB_CONN_MAX_IDLE_TIME" default:"1m"`
}

// RetryConfig bounds automatic retry of transient store failures.
// The defaults give 5 attempts spread over roughly 30 seconds.
type RetryConfig struct {
	MaxAttempts    int           `env:"TOUCANS_RETRY_MAX_ATTEMPTS" default:"5"`
	InitialBackoff time.Duration `env:"TOUCANS_RETRY_INITIAL_BACKOFF" default:"2s"`
	MaxBackoff     time.Duration `env:"TOUCANS_RETRY_MAX_BACKOFF" default:"16s"`
}

// Validate rejects retry settings that would disable the bounded-retry
// guarantee entirely.
func (c *RetryConfig) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("TOUCANS_RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.MaxAttempts)
	}
	if c.InitialBackoff <= 0 {
		return fmt.Errorf("TOUCANS_RETRY_INITIAL_BACKOFF must be positive, got %s", c.InitialBackoff)
	}
	return nil
}

// EventsConfig configures the optional NATS event sink. An empty URL
// selects the no-op publisher.
type EventsConfig struct {
	NATSURL string `env:"TOUCANS_NATS_URL"`
	Stream  string `env:"TOUCANS_NATS_STREAM" default:"toucans_events"`
	Subject string `env:"TOUCANS_NATS_SUBJECT" default:"todo.events"`
}

// OtelConfig configures OpenTelemetry export. Endpoint and headers follow
// the standard OTEL_EXPORTER_OTLP_* environment variables.
type OtelConfig struct {
	Enabled     bool   `env:"TOUCANS_OTEL_ENABLED" default:"false"`
	ServiceName string `env:"TOUCANS_OTEL_SERVICE_NAME" default:"toucans-api"`
}

// Load parses environment variables into a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DB.DSN == "" {
		return fmt.Errorf("TOUCANS_DB_DSN is required")
	}
	switch c.Env {
	case "dev", "prod":
	default:
		return fmt.Errorf("unknown TOUCANS_ENV: %s", c.Env)
	}
	return nil
}
