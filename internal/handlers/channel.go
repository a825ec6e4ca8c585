package handlers

import (
	"context"
	"errors"

	"smarthome-skill-bridge/internal/models"
	"smarthome-skill-bridge/internal/services"
)

// ChannelHandler handles ChannelController directives
type ChannelHandler struct {
	devices services.DeviceService
}

// NewChannelHandler creates a new channel handler
func NewChannelHandler(devices services.DeviceService) *ChannelHandler {
	return &ChannelHandler{devices: devices}
}

func (h *ChannelHandler) Namespace() models.Namespace {
	return models.NamespaceChannelController
}

func (h *ChannelHandler) Directives() []string {
	return []string{"ChangeChannel", "SkipChannels"}
}

type channelPayload struct {
	Channel         services.Channel `json:"channel"`
	ChannelMetadata struct {
		Name string `json:"name"`
	} `json:"channelMetadata"`
	ChannelCount int `json:"channelCount"`
}

// Handle implements DirectiveHandler
func (h *ChannelHandler) Handle(ctx context.Context, d *models.Directive, events *services.EventBuilder) (*models.Event, error) {
	if d.Name != "ChangeChannel" && d.Name != "SkipChannels" {
		return nil, invalidDirective(d)
	}
	if err := requireEndpoint(d); err != nil {
		return nil, err
	}

	var p channelPayload
	if err := d.DecodePayload(&p); err != nil {
		return nil, invalidValue(d, err)
	}

	var state *services.ChannelState
	var err error
	switch d.Name {
	case "ChangeChannel":
		if p.Channel.IsEmpty() {
			return nil, invalidValue(d, errors.New("channel must carry a number, call sign or uri"))
		}
		state, err = h.devices.ChangeChannel(ctx, services.TargetOf(d), &services.ChannelRequest{
			Channel: p.Channel,
			Name:    p.ChannelMetadata.Name,
		})
	case "SkipChannels":
		if p.ChannelCount == 0 {
			return nil, invalidValue(d, errors.New("channelCount must not be zero"))
		}
		state, err = h.devices.SkipChannels(ctx, services.TargetOf(d), p.ChannelCount)
	}
	if err != nil {
		return nil, backendError(err)
	}

	return events.BuildResponse(d, []models.Property{
		models.NewProperty(models.NamespaceChannelController, "channel", state.Channel, events.Now()),
	}), nil
}
