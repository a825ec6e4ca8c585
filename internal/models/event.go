package models

import (
	"encoding/json"
	"time"
)

// Event is an outbound envelope. It marshals into the legacy or versioned
// shape depending on Header.PayloadVersion.
type Event struct {
	Header   Header
	Endpoint *EventEndpoint
	Payload  interface{}
	Context  *EventContext
}

// EventEndpoint identifies the endpoint a control response refers to
type EventEndpoint struct {
	EndpointID string `json:"endpointId"`
}

// EventContext carries reported state on versioned responses
type EventContext struct {
	Properties []Property `json:"properties"`
}

// Property is a single reported state value
type Property struct {
	Namespace                 string      `json:"namespace"`
	Name                      string      `json:"name"`
	Value                     interface{} `json:"value"`
	TimeOfSample              string      `json:"timeOfSample"`
	UncertaintyInMilliseconds int         `json:"uncertaintyInMilliseconds"`
}

// NewProperty creates a property sampled at t
func NewProperty(ns Namespace, name string, value interface{}, t time.Time) Property {
	return Property{
		Namespace:    ns.Wire(),
		Name:         name,
		Value:        value,
		TimeOfSample: t.UTC().Format(time.RFC3339),
	}
}

// Protocol returns the protocol revision the event was built for
func (e *Event) Protocol() ProtocolVersion {
	return ProtocolVersion(e.Header.PayloadVersion)
}

// IsError reports whether the event is an ErrorResponse
func (e *Event) IsError() bool {
	return e.Header.Name == EventNameErrorResponse
}

// ErrorType returns the payload error kind of an ErrorResponse, or ""
func (e *Event) ErrorType() ErrorType {
	if !e.IsError() {
		return ""
	}
	switch p := e.Payload.(type) {
	case ErrorPayload:
		return p.Type
	case *ErrorPayload:
		return p.Type
	}
	return ""
}

type legacyEvent struct {
	Header  Header      `json:"header"`
	Payload interface{} `json:"payload"`
}

type versionedEvent struct {
	Event struct {
		Header   Header         `json:"header"`
		Endpoint *EventEndpoint `json:"endpoint,omitempty"`
		Payload  interface{}    `json:"payload"`
	} `json:"event"`
	Context *EventContext `json:"context,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (e Event) MarshalJSON() ([]byte, error) {
	payload := e.Payload
	if payload == nil {
		payload = struct{}{}
	}

	if e.Protocol() == ProtocolLegacy {
		return json.Marshal(legacyEvent{Header: e.Header, Payload: payload})
	}

	var out versionedEvent
	out.Event.Header = e.Header
	out.Event.Endpoint = e.Endpoint
	out.Event.Payload = payload
	out.Context = e.Context
	return json.Marshal(out)
}
