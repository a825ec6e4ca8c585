package handlers

import (
	"context"

	"smarthome-skill-bridge/internal/models"
	"smarthome-skill-bridge/internal/services"
)

// PowerHandler handles PowerController directives
type PowerHandler struct {
	devices services.DeviceService
}

// NewPowerHandler creates a new power handler
func NewPowerHandler(devices services.DeviceService) *PowerHandler {
	return &PowerHandler{devices: devices}
}

func (h *PowerHandler) Namespace() models.Namespace {
	return models.NamespacePowerController
}

func (h *PowerHandler) Directives() []string {
	return []string{"TurnOn", "TurnOff"}
}

// Handle implements DirectiveHandler
func (h *PowerHandler) Handle(ctx context.Context, d *models.Directive, events *services.EventBuilder) (*models.Event, error) {
	var on bool
	switch d.Name {
	case "TurnOn":
		on = true
	case "TurnOff":
		on = false
	default:
		return nil, invalidDirective(d)
	}

	if err := requireEndpoint(d); err != nil {
		return nil, err
	}

	state, err := h.devices.SetPower(ctx, services.TargetOf(d), on)
	if err != nil {
		return nil, backendError(err)
	}

	return events.BuildResponse(d, []models.Property{
		models.NewProperty(models.NamespacePowerController, "powerState", state.Value(), events.Now()),
	}), nil
}
