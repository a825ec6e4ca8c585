package config

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"smarthome-skill-bridge/internal/models"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the bridge
type Config struct {
	Environment string
	Port        string
	Verbose     bool
	Protocol    models.ProtocolVersion
	Remote      RemoteConfig
	RateLimit   RateLimitConfig
	JSONLogs    bool
}

// RemoteConfig describes the device-control backend
type RemoteConfig struct {
	Scheme string
	Host   string
	Port   int
}

// RateLimitConfig bounds outbound calls per container. PerSecond <= 0 disables it.
type RateLimitConfig struct {
	PerSecond float64
	Burst     int
}

// BaseURL returns scheme://host:port
func (r RemoteConfig) BaseURL() string {
	return fmt.Sprintf("%s://%s", r.Scheme, net.JoinHostPort(r.Host, strconv.Itoa(r.Port)))
}

// Enabled reports whether outbound rate limiting is on
func (r RateLimitConfig) Enabled() bool {
	return r.PerSecond > 0
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("PORT", "8081")
	v.SetDefault("VERBOSE", false)
	v.SetDefault("PROTOCOL_VERSION", string(models.ProtocolVersioned))
	v.SetDefault("REMOTE_SCHEME", "http")
	v.SetDefault("REMOTE_PORT", 80)
	v.SetDefault("OUTBOUND_RATE_LIMIT", 0)
	v.SetDefault("OUTBOUND_RATE_BURST", 1)
	v.SetDefault("LOG_JSON", false)

	config := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		Port:        v.GetString("PORT"),
		Verbose:     v.GetBool("VERBOSE"),
		Protocol:    models.ProtocolVersion(v.GetString("PROTOCOL_VERSION")),
		Remote: RemoteConfig{
			Scheme: v.GetString("REMOTE_SCHEME"),
			Host:   v.GetString("REMOTE_HOST"),
			Port:   v.GetInt("REMOTE_PORT"),
		},
		RateLimit: RateLimitConfig{
			PerSecond: v.GetFloat64("OUTBOUND_RATE_LIMIT"),
			Burst:     v.GetInt("OUTBOUND_RATE_BURST"),
		},
		JSONLogs: v.GetBool("LOG_JSON"),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks that required settings are present. Values are not checked against the backend.
func (c *Config) Validate() error {
	if c.Remote.Host == "" {
		return fmt.Errorf("REMOTE_HOST is required")
	}
	if c.Remote.Port < 1 || c.Remote.Port > 65535 {
		return fmt.Errorf("REMOTE_PORT must be between 1 and 65535, got %d", c.Remote.Port)
	}
	if c.Remote.Scheme != "http" && c.Remote.Scheme != "https" {
		return fmt.Errorf("REMOTE_SCHEME must be http or https, got %q", c.Remote.Scheme)
	}
	if !c.Protocol.IsValid() {
		return fmt.Errorf("PROTOCOL_VERSION must be %s or %s, got %q",
			models.ProtocolLegacy, models.ProtocolVersioned, c.Protocol)
	}
	if c.RateLimit.Enabled() && c.RateLimit.Burst < 1 {
		return fmt.Errorf("OUTBOUND_RATE_BURST must be at least 1 when rate limiting is enabled")
	}
	return nil
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
