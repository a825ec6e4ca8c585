package handlers

import (
	"context"

	"smarthome-skill-bridge/internal/models"
	"smarthome-skill-bridge/internal/services"

	"github.com/sirupsen/logrus"
)

// DiscoveryHandler answers Discovery.Discover. It never fails: backend or
// parse errors produce an empty endpoint list.
type DiscoveryHandler struct {
	devices services.DeviceService
	logger  *logrus.Logger
}

// NewDiscoveryHandler creates a new discovery handler
func NewDiscoveryHandler(devices services.DeviceService, logger *logrus.Logger) *DiscoveryHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &DiscoveryHandler{
		devices: devices,
		logger:  logger,
	}
}

func (h *DiscoveryHandler) Namespace() models.Namespace {
	return models.NamespaceDiscovery
}

func (h *DiscoveryHandler) Directives() []string {
	return []string{"Discover"}
}

// Handle implements DirectiveHandler
func (h *DiscoveryHandler) Handle(ctx context.Context, d *models.Directive, events *services.EventBuilder) (*models.Event, error) {
	devices, err := h.devices.ListDevices(ctx, d.Protocol, d.Token)
	if err != nil {
		h.logger.WithError(err).Warn("Discovery failed, reporting no endpoints")
		return events.BuildDiscoveryResponse(nil), nil
	}

	return events.BuildDiscoveryResponse(h.filter(devices)), nil
}

// filter keeps descriptors with an id, a name and a recognised type
func (h *DiscoveryHandler) filter(devices []models.BackendDevice) []models.DiscoveredEndpoint {
	endpoints := make([]models.DiscoveredEndpoint, 0, len(devices))
	for i := range devices {
		if err := models.ValidateDevice(&devices[i]); err != nil {
			h.logger.WithFields(logrus.Fields{
				"device_id": devices[i].ID,
				"reason":    err.Error(),
			}).Debug("Skipping device")
			continue
		}
		endpoints = append(endpoints, models.NewDiscoveredEndpoint(devices[i]))
	}
	return endpoints
}
