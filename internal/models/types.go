package models

import (
	"strings"
)

// ProtocolVersion identifies the envelope revision of the smart home protocol
type ProtocolVersion string

const (
	// ProtocolLegacy is the flat {header, payload} envelope
	ProtocolLegacy ProtocolVersion = "2"
	// ProtocolVersioned is the {directive: ...} / {event: ...} envelope
	ProtocolVersioned ProtocolVersion = "3"
)

// IsValid reports whether the protocol version is one the bridge speaks
func (p ProtocolVersion) IsValid() bool {
	return p == ProtocolLegacy || p == ProtocolVersioned
}

// Collection returns the backend collection the protocol revision talks to
func (p ProtocolVersion) Collection() string {
	if p == ProtocolLegacy {
		return "devices"
	}
	return "endpoints"
}

// ControlMethod returns the HTTP method used for control requests
func (p ProtocolVersion) ControlMethod() string {
	if p == ProtocolLegacy {
		return "PUT"
	}
	return "POST"
}

// Namespace is a directive namespace with any vendor prefix removed
type Namespace string

const (
	NamespaceDiscovery          Namespace = "Discovery"
	NamespacePowerController    Namespace = "PowerController"
	NamespaceChannelController  Namespace = "ChannelController"
	NamespaceInputController    Namespace = "InputController"
	NamespaceStepSpeaker        Namespace = "StepSpeaker"
	NamespacePlaybackController Namespace = "PlaybackController"
)

// Wire namespaces used on outbound events
const (
	EventNamespaceAlexa     = "Alexa"
	EventNamespaceDiscovery = "Alexa.Discovery"

	EventNameResponse         = "Response"
	EventNameErrorResponse    = "ErrorResponse"
	EventNameDiscoverResponse = "Discover.Response"
)

const (
	interfacePrefix       = "Alexa."
	legacyInterfacePrefix = "Alexa.ConnectedHome."

	capabilityType    = "AlexaInterface"
	capabilityVersion = "3"
)

// NormalizeNamespace strips the vendor prefixes both protocol revisions use
func NormalizeNamespace(ns string) Namespace {
	ns = strings.TrimSpace(ns)
	ns = strings.TrimPrefix(ns, legacyInterfacePrefix)
	ns = strings.TrimPrefix(ns, interfacePrefix)
	return Namespace(ns)
}

// Wire returns the fully qualified namespace
func (n Namespace) Wire() string {
	return interfacePrefix + string(n)
}
