package models

// Capability is a control interface a device can support
type Capability string

const (
	CapabilityPower    Capability = "PowerController"
	CapabilityChannel  Capability = "ChannelController"
	CapabilityPlayback Capability = "PlaybackController"
	CapabilitySpeaker  Capability = "StepSpeaker"
	CapabilityInput    Capability = "InputController"
)

// capabilityRules is the fixed device type to capability table
var capabilityRules = map[DeviceType][]Capability{
	DeviceTypeSwitchBinary: {CapabilityPower},
	DeviceTypeTelevision: {
		CapabilityPower,
		CapabilityChannel,
		CapabilityPlayback,
		CapabilitySpeaker,
		CapabilityInput,
	},
	DeviceTypeRoku: {CapabilityChannel, CapabilityPlayback},
}

// reportable state properties per capability
var capabilityProperties = map[Capability][]string{
	CapabilityPower:   {"powerState"},
	CapabilityChannel: {"channel"},
	CapabilityInput:   {"input"},
}

// CapabilitiesFor returns the capabilities of a device type. Unknown types
// have none. The returned slice is a copy.
func CapabilitiesFor(deviceType DeviceType) []Capability {
	caps := capabilityRules[deviceType]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// CapabilityResponse is the discovery wire form of a capability
type CapabilityResponse struct {
	Type       string                `json:"type"`
	Interface  string                `json:"interface"`
	Version    string                `json:"version"`
	Properties *CapabilityProperties `json:"properties,omitempty"`
}

// CapabilityProperties declares which properties are reported
type CapabilityProperties struct {
	Supported           []SupportedProperty `json:"supported"`
	ProactivelyReported bool                `json:"proactivelyReported"`
	Retrievable         bool                `json:"retrievable"`
}

// SupportedProperty names one reportable property
type SupportedProperty struct {
	Name string `json:"name"`
}

// Describe returns the discovery wire form
func (c Capability) Describe() CapabilityResponse {
	resp := CapabilityResponse{
		Type:      capabilityType,
		Interface: Namespace(c).Wire(),
		Version:   capabilityVersion,
	}

	if names, ok := capabilityProperties[c]; ok {
		props := &CapabilityProperties{}
		for _, n := range names {
			props.Supported = append(props.Supported, SupportedProperty{Name: n})
		}
		resp.Properties = props
	}

	return resp
}
