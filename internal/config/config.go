package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all devhost configuration.
type Config struct {
	Server    ServerConfig
	Bridge    BridgeConfig
	Profile   ProfileConfig
	Browser   BrowserConfig
	Audit     AuditConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string `envconfig:"PORT" default:"8080"`
	Host         string `envconfig:"HOST" default:"0.0.0.0"`
	PairingToken string `envconfig:"PAIRING_TOKEN" default:""`
}

// BridgeConfig holds dispatch-layer configuration.
type BridgeConfig struct {
	MaxEnvelopeBytes int     `envconfig:"BRIDGE_MAX_ENVELOPE_BYTES" default:"65536"`
	SessionRPS       float64 `envconfig:"BRIDGE_SESSION_RPS" default:"20"`
	SessionBurst     int     `envconfig:"BRIDGE_SESSION_BURST" default:"40"`
}

// ProfileConfig holds device profile configuration. An empty path selects the
// built-in default profile.
type ProfileConfig struct {
	Path string `envconfig:"DEVICE_PROFILE" default:""`
}

// BrowserConfig holds external-browser provider configuration.
type BrowserConfig struct {
	Preflight        bool          `envconfig:"BROWSER_PREFLIGHT" default:"false"`
	PreflightTimeout time.Duration `envconfig:"BROWSER_PREFLIGHT_TIMEOUT" default:"3s"`
}

// AuditConfig holds authorization audit trail configuration. An empty path
// selects the in-memory store.
type AuditConfig struct {
	Enabled  bool   `envconfig:"AUDIT_ENABLED" default:"true"`
	Path     string `envconfig:"AUDIT_DB" default:""`
	Capacity int    `envconfig:"AUDIT_CAPACITY" default:"1000"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds per-IP rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Host: "0.0.0.0",
		},
		Bridge: BridgeConfig{
			MaxEnvelopeBytes: 65536,
			SessionRPS:       20,
			SessionBurst:     40,
		},
		Browser: BrowserConfig{
			Preflight:        false,
			PreflightTimeout: 3 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:  true,
			Capacity: 1000,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
