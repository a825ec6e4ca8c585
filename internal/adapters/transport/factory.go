package transport

import (
	"fmt"

	"smarthome-skill-bridge/internal/config"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// NewClientFromConfig creates the backend client described by the configuration
func NewClientFromConfig(cfg *config.Config, logger *logrus.Logger) (*HTTPClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	opts := Options{
		BaseURL: cfg.Remote.BaseURL(),
		Logger:  logger,
	}
	if cfg.RateLimit.Enabled() {
		opts.Limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.PerSecond), cfg.RateLimit.Burst)
	}

	client, err := NewHTTPClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	return client, nil
}
