package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"smarthome-skill-bridge/internal/config"
	"smarthome-skill-bridge/internal/middleware"
	"smarthome-skill-bridge/internal/models"

	"github.com/sirupsen/logrus"
)

// ConnectionManager keeps one container alive across warm invocations
type ConnectionManager struct {
	container   *Container
	lastUsed    time.Time
	mu          sync.RWMutex
	initialized bool
	initOnce    sync.Once
	initErr     error
	loadConfig  func() (*config.Config, error)
	logger      *logrus.Logger
}

var (
	globalConnectionManager *ConnectionManager
	connectionManagerOnce   sync.Once
)

// GetConnectionManager returns the global connection manager instance
func GetConnectionManager() *ConnectionManager {
	connectionManagerOnce.Do(func() {
		globalConnectionManager = NewConnectionManager(config.GetOptimizedConfig)
	})
	return globalConnectionManager
}

// NewConnectionManager creates a manager that loads configuration with load
// on first use
func NewConnectionManager(load func() (*config.Config, error)) *ConnectionManager {
	return &ConnectionManager{loadConfig: load, logger: logrus.New()}
}

// Initialize builds the container once. Later calls return the first result.
func (cm *ConnectionManager) Initialize(cfg *config.Config) error {
	cm.initOnce.Do(func() {
		container, err := NewContainer(cfg)
		if err != nil {
			cm.initErr = fmt.Errorf("failed to initialize container: %w", err)
			return
		}

		cm.mu.Lock()
		cm.container = container
		cm.lastUsed = time.Now()
		cm.initialized = true
		cm.mu.Unlock()
	})

	return cm.initErr
}

// GetContainer returns the container, initializing it if necessary
func (cm *ConnectionManager) GetContainer(ctx context.Context) (*Container, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cm.mu.Lock()
	if cm.initialized && cm.container != nil {
		cm.lastUsed = time.Now()
		container := cm.container
		cm.mu.Unlock()
		return container, nil
	}
	cm.mu.Unlock()

	if cm.loadConfig == nil {
		return nil, fmt.Errorf("connection manager has no configuration")
	}
	cfg, err := cm.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cm.Initialize(cfg); err != nil {
		return nil, err
	}

	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if cm.container == nil {
		return nil, fmt.Errorf("container was cleaned up")
	}
	return cm.container, nil
}

// Handle runs one directive through the managed container. When no
// container can be obtained the reply is an INTERNAL_ERROR event.
func (cm *ConnectionManager) Handle(ctx context.Context, raw json.RawMessage) (*models.Event, error) {
	container, err := cm.GetContainer(ctx)
	if err != nil {
		unavailable := func(context.Context, json.RawMessage) (*models.Event, error) {
			return nil, fmt.Errorf("container unavailable: %w", err)
		}
		return middleware.Recover(cm.logger, models.ProtocolVersioned)(unavailable)(ctx, raw)
	}
	return container.Handle(ctx, raw)
}

// IsHealthy reports whether a container is ready
func (cm *ConnectionManager) IsHealthy() bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.initialized && cm.container != nil
}

// LastUsed returns when the container was last handed out
func (cm *ConnectionManager) LastUsed() time.Time {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.lastUsed
}

// Cleanup releases the container. The manager cannot be reinitialized.
func (cm *ConnectionManager) Cleanup() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container != nil {
		if err := cm.container.Close(); err != nil {
			return err
		}
		cm.container = nil
	}

	cm.initialized = false
	return nil
}
