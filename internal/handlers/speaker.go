package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"

	"smarthome-skill-bridge/internal/models"
	"smarthome-skill-bridge/internal/services"
)

// Volume steps accepted by AdjustVolume
const (
	MinVolumeSteps = -100
	MaxVolumeSteps = 100
)

// SpeakerHandler handles StepSpeaker directives. StepSpeaker has no
// reportable properties.
type SpeakerHandler struct {
	devices services.DeviceService
}

// NewSpeakerHandler creates a new step speaker handler
func NewSpeakerHandler(devices services.DeviceService) *SpeakerHandler {
	return &SpeakerHandler{devices: devices}
}

func (h *SpeakerHandler) Namespace() models.Namespace {
	return models.NamespaceStepSpeaker
}

func (h *SpeakerHandler) Directives() []string {
	return []string{"SetMute", "AdjustVolume"}
}

type speakerPayload struct {
	Mute        *bool        `json:"mute"`
	VolumeSteps *json.Number `json:"volumeSteps"`
}

// Handle implements DirectiveHandler
func (h *SpeakerHandler) Handle(ctx context.Context, d *models.Directive, events *services.EventBuilder) (*models.Event, error) {
	if d.Name != "SetMute" && d.Name != "AdjustVolume" {
		return nil, invalidDirective(d)
	}
	if err := requireEndpoint(d); err != nil {
		return nil, err
	}

	var p speakerPayload
	if err := d.DecodePayload(&p); err != nil {
		return nil, invalidValue(d, err)
	}

	var err error
	switch d.Name {
	case "SetMute":
		if p.Mute == nil {
			return nil, models.NewDirectiveError(models.ErrorInvalidValue, "SetMute requires mute")
		}
		err = h.devices.SetMute(ctx, services.TargetOf(d), *p.Mute)
	case "AdjustVolume":
		if p.VolumeSteps == nil {
			return nil, models.NewDirectiveError(models.ErrorInvalidValue, "AdjustVolume requires volumeSteps")
		}
		steps, verr := volumeSteps(*p.VolumeSteps)
		if verr != nil {
			return nil, verr
		}
		err = h.devices.AdjustVolume(ctx, services.TargetOf(d), steps)
	}
	if err != nil {
		return nil, backendError(err)
	}

	return events.BuildResponse(d, nil), nil
}

// volumeSteps range checks before converting so huge values are out of range
// rather than undecodable
func volumeSteps(n json.Number) (int, error) {
	f, err := n.Float64()
	if errors.Is(err, strconv.ErrRange) {
		f, err = math.Inf(1), nil
		if len(n) > 0 && n[0] == '-' {
			f = math.Inf(-1)
		}
	}
	if err != nil {
		return 0, models.NewDirectiveError(models.ErrorInvalidValue, "volumeSteps %q is not a number", n.String())
	}
	if f < MinVolumeSteps || f > MaxVolumeSteps {
		return 0, models.NewDirectiveError(models.ErrorValueOutOfRange,
			"volumeSteps %s outside %d..%d", n.String(), MinVolumeSteps, MaxVolumeSteps)
	}
	if f != math.Trunc(f) {
		return 0, models.NewDirectiveError(models.ErrorInvalidValue, "volumeSteps %s is not an integer", n.String())
	}
	return int(f), nil
}
