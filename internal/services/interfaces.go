package services

import (
	"context"

	"smarthome-skill-bridge/internal/models"
)

// DeviceService defines the backend operations behind each directive.
// Every method issues exactly one transport call.
type DeviceService interface {
	// Discovery
	ListDevices(ctx context.Context, protocol models.ProtocolVersion, token string) ([]models.BackendDevice, error)

	// Control operations
	SetPower(ctx context.Context, target Target, on bool) (*PowerState, error)
	ChangeChannel(ctx context.Context, target Target, req *ChannelRequest) (*ChannelState, error)
	SkipChannels(ctx context.Context, target Target, count int) (*ChannelState, error)
	SelectInput(ctx context.Context, target Target, input string) (*InputState, error)
	SetMute(ctx context.Context, target Target, mute bool) error
	AdjustVolume(ctx context.Context, target Target, steps int) error
	Playback(ctx context.Context, target Target, action string) error
}

// Target addresses one endpoint on the backend
type Target struct {
	Protocol   models.ProtocolVersion
	EndpointID string
	Token      string
}

// TargetOf builds the Target a directive addresses
func TargetOf(d *models.Directive) Target {
	return Target{
		Protocol:   d.Protocol,
		EndpointID: d.EndpointID,
		Token:      d.Token,
	}
}

// PowerState is the reported power of an endpoint
type PowerState struct {
	On bool
}

// Value returns the wire value of the powerState property
func (p PowerState) Value() string {
	if p.On {
		return "ON"
	}
	return "OFF"
}

// Channel identifies a channel by any of its identifiers
type Channel struct {
	Number            string `json:"number,omitempty"`
	CallSign          string `json:"callSign,omitempty"`
	AffiliateCallSign string `json:"affiliateCallSign,omitempty"`
	URI               string `json:"uri,omitempty"`
}

// IsEmpty reports whether no identifier is set
func (c Channel) IsEmpty() bool {
	return c.Number == "" && c.CallSign == "" && c.AffiliateCallSign == "" && c.URI == ""
}

// ChannelRequest is a ChangeChannel request
type ChannelRequest struct {
	Channel Channel `json:"channel"`
	Name    string  `json:"name,omitempty"`
}

// ChannelState is the reported channel of an endpoint
type ChannelState struct {
	Channel Channel
}

// InputState is the reported input of an endpoint
type InputState struct {
	Input string
}
