package handlers

import (
	"context"

	"smarthome-skill-bridge/internal/models"
	"smarthome-skill-bridge/internal/services"
)

var playbackActions = []string{
	"FastForward",
	"Next",
	"Pause",
	"Play",
	"Previous",
	"Rewind",
	"StartOver",
	"Stop",
}

// PlaybackHandler handles PlaybackController directives
type PlaybackHandler struct {
	devices services.DeviceService
	actions map[string]bool
}

// NewPlaybackHandler creates a new playback handler
func NewPlaybackHandler(devices services.DeviceService) *PlaybackHandler {
	actions := make(map[string]bool, len(playbackActions))
	for _, a := range playbackActions {
		actions[a] = true
	}
	return &PlaybackHandler{devices: devices, actions: actions}
}

func (h *PlaybackHandler) Namespace() models.Namespace {
	return models.NamespacePlaybackController
}

func (h *PlaybackHandler) Directives() []string {
	out := make([]string, len(playbackActions))
	copy(out, playbackActions)
	return out
}

// Handle implements DirectiveHandler
func (h *PlaybackHandler) Handle(ctx context.Context, d *models.Directive, events *services.EventBuilder) (*models.Event, error) {
	if !h.actions[d.Name] {
		return nil, invalidDirective(d)
	}
	if err := requireEndpoint(d); err != nil {
		return nil, err
	}

	if err := h.devices.Playback(ctx, services.TargetOf(d), d.Name); err != nil {
		return nil, backendError(err)
	}

	return events.BuildResponse(d, nil), nil
}
