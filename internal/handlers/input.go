package handlers

import (
	"context"
	"errors"
	"strings"

	"smarthome-skill-bridge/internal/models"
	"smarthome-skill-bridge/internal/services"
)

// InputHandler handles InputController directives
type InputHandler struct {
	devices services.DeviceService
}

// NewInputHandler creates a new input handler
func NewInputHandler(devices services.DeviceService) *InputHandler {
	return &InputHandler{devices: devices}
}

func (h *InputHandler) Namespace() models.Namespace {
	return models.NamespaceInputController
}

func (h *InputHandler) Directives() []string {
	return []string{"SelectInput"}
}

// Handle implements DirectiveHandler
func (h *InputHandler) Handle(ctx context.Context, d *models.Directive, events *services.EventBuilder) (*models.Event, error) {
	if d.Name != "SelectInput" {
		return nil, invalidDirective(d)
	}
	if err := requireEndpoint(d); err != nil {
		return nil, err
	}

	var p struct {
		Input string `json:"input"`
	}
	if err := d.DecodePayload(&p); err != nil {
		return nil, invalidValue(d, err)
	}
	input := strings.TrimSpace(p.Input)
	if input == "" {
		return nil, invalidValue(d, errors.New("input is required"))
	}

	state, err := h.devices.SelectInput(ctx, services.TargetOf(d), input)
	if err != nil {
		return nil, backendError(err)
	}

	return events.BuildResponse(d, []models.Property{
		models.NewProperty(models.NamespaceInputController, "input", state.Input, events.Now()),
	}), nil
}
