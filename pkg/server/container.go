package server

import (
	"context"
	"encoding/json"
	"fmt"

	"smarthome-skill-bridge/internal/adapters/transport"
	"smarthome-skill-bridge/internal/config"
	"smarthome-skill-bridge/internal/handlers"
	"smarthome-skill-bridge/internal/middleware"
	"smarthome-skill-bridge/internal/models"
	"smarthome-skill-bridge/internal/services"
	"smarthome-skill-bridge/pkg/lambda"

	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Transport transport.Client
	Devices   services.DeviceService
	Router    *handlers.Router

	handler lambda.HandlerFunc
	http    *transport.HTTPClient
}

// NewContainer creates a new dependency injection container backed by the
// configured HTTP backend
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	logger := config.NewLogger(cfg)
	client, err := transport.NewClientFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	c, err := NewContainerWithClient(cfg, client, logger)
	if err != nil {
		return nil, err
	}
	c.http = client
	return c, nil
}

// NewContainerWithClient creates a container around an existing backend client
func NewContainerWithClient(cfg *config.Config, client transport.Client, logger *logrus.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if client == nil {
		return nil, fmt.Errorf("backend client is required")
	}
	if logger == nil {
		logger = config.NewLogger(cfg)
	}

	protocol := cfg.Protocol
	if !protocol.IsValid() {
		protocol = models.ProtocolVersioned
	}

	devices := services.NewDeviceService(client, logger)
	router := handlers.NewRouter(devices, handlers.RouterOptions{
		Fallback: protocol,
		Logger:   logger,
	})

	c := &Container{
		Config:    cfg,
		Logger:    logger,
		Transport: client,
		Devices:   devices,
		Router:    router,
	}
	c.handler = lambda.Chain(c.route,
		middleware.InvocationLogger(logger),
		middleware.Recover(logger, protocol),
	)

	return c, nil
}

func (c *Container) route(ctx context.Context, raw json.RawMessage) (*models.Event, error) {
	return c.Router.Route(ctx, raw), nil
}

// Handler returns the directive pipeline with logging and recovery applied
func (c *Container) Handler() lambda.HandlerFunc {
	return c.handler
}

// Handle runs one directive through the pipeline
func (c *Container) Handle(ctx context.Context, raw json.RawMessage) (*models.Event, error) {
	return c.handler(ctx, raw)
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.http != nil {
		c.http.CloseIdleConnections()
	}
	return nil
}
