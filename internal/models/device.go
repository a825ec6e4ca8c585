package models

// DeviceType is the backend device-type tag
type DeviceType string

const (
	DeviceTypeSwitchBinary DeviceType = "switchBinary"
	DeviceTypeTelevision   DeviceType = "television"
	DeviceTypeRoku         DeviceType = "roku"
)

// BackendDevice is a device descriptor returned by GET /endpoints
type BackendDevice struct {
	ID           string     `json:"id" validate:"nonblank"`
	Name         string     `json:"name" validate:"nonblank"`
	Description  string     `json:"description"`
	Manufacturer string     `json:"manufacturer"`
	Type         DeviceType `json:"type" validate:"nonblank,oneof=switchBinary television roku"`
}

// LegacyDevice is a device descriptor returned by GET /devices
type LegacyDevice struct {
	ID         string        `json:"id"`
	DeviceType DeviceType    `json:"deviceType,omitempty"`
	Metrics    LegacyMetrics `json:"metrics"`
}

// LegacyMetrics holds the title and last known level of a legacy device
type LegacyMetrics struct {
	Title string `json:"title"`
	Level string `json:"level"`
}

// ToBackendDevice converts a legacy descriptor. Legacy backends only
// exposed binary switches, so a missing type means switchBinary.
func (d LegacyDevice) ToBackendDevice() BackendDevice {
	deviceType := d.DeviceType
	if deviceType == "" {
		deviceType = DeviceTypeSwitchBinary
	}
	return BackendDevice{
		ID:          d.ID,
		Name:        d.Metrics.Title,
		Description: d.Metrics.Title,
		Type:        deviceType,
	}
}

// DiscoveredEndpoint is one entry of a Discover.Response payload
type DiscoveredEndpoint struct {
	EndpointID        string               `json:"endpointId"`
	ManufacturerName  string               `json:"manufacturerName"`
	FriendlyName      string               `json:"friendlyName"`
	Description       string               `json:"description"`
	DisplayCategories []string             `json:"displayCategories"`
	Capabilities      []CapabilityResponse `json:"capabilities"`
}

// DiscoveryPayload wraps the discovered endpoints
type DiscoveryPayload struct {
	Endpoints []DiscoveredEndpoint `json:"endpoints"`
}

// NewDiscoveredEndpoint maps a validated backend device to its discovery shape
func NewDiscoveredEndpoint(d BackendDevice) DiscoveredEndpoint {
	caps := CapabilitiesFor(d.Type)
	wire := make([]CapabilityResponse, 0, len(caps))
	for _, c := range caps {
		wire = append(wire, c.Describe())
	}

	description := d.Description
	if description == "" {
		description = d.Name
	}

	return DiscoveredEndpoint{
		EndpointID:        d.ID,
		ManufacturerName:  d.Manufacturer,
		FriendlyName:      d.Name,
		Description:       description,
		DisplayCategories: []string{},
		Capabilities:      wire,
	}
}
