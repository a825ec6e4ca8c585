package services

import (
	"time"

	"smarthome-skill-bridge/internal/models"

	"github.com/google/uuid"
)

// EventBuilder stamps outbound envelopes for one protocol revision
type EventBuilder struct {
	protocol models.ProtocolVersion
	newID    func() string
	now      func() time.Time
}

// NewEventBuilder creates an EventBuilder that generates uuid message ids
func NewEventBuilder(protocol models.ProtocolVersion) *EventBuilder {
	return &EventBuilder{
		protocol: protocol,
		newID:    func() string { return uuid.New().String() },
		now:      time.Now,
	}
}

// WithIDGenerator replaces the message id generator
func (b *EventBuilder) WithIDGenerator(gen func() string) *EventBuilder {
	b.newID = gen
	return b
}

// WithClock replaces the clock used for property samples
func (b *EventBuilder) WithClock(now func() time.Time) *EventBuilder {
	b.now = now
	return b
}

// Protocol returns the revision events are built for
func (b *EventBuilder) Protocol() models.ProtocolVersion {
	return b.protocol
}

// Now returns the builder clock reading
func (b *EventBuilder) Now() time.Time {
	return b.now()
}

// BuildEvent creates an event with a fresh message id. A nil payload becomes {}.
func (b *EventBuilder) BuildEvent(namespace, name string, payload interface{}) *models.Event {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return &models.Event{
		Header: models.Header{
			Namespace:      namespace,
			Name:           name,
			PayloadVersion: string(b.protocol),
			MessageID:      b.newID(),
		},
		Payload: payload,
	}
}

// BuildError creates an Alexa.ErrorResponse event
func (b *EventBuilder) BuildError(errType models.ErrorType, message string) *models.Event {
	return b.BuildEvent(models.EventNamespaceAlexa, models.EventNameErrorResponse, models.ErrorPayload{
		Type:    errType,
		Message: message,
	})
}

// BuildDirectiveError creates an error event that answers a specific directive
func (b *EventBuilder) BuildDirectiveError(d *models.Directive, errType models.ErrorType, message string) *models.Event {
	event := b.BuildError(errType, message)
	if d != nil {
		event.Header.CorrelationToken = d.CorrelationToken
		if d.EndpointID != "" && b.protocol == models.ProtocolVersioned {
			event.Endpoint = &models.EventEndpoint{EndpointID: d.EndpointID}
		}
	}
	return event
}

// BuildResponse creates the success event for a control directive. Versioned
// events carry properties in context, legacy events in the payload.
func (b *EventBuilder) BuildResponse(d *models.Directive, properties []models.Property) *models.Event {
	if properties == nil {
		properties = []models.Property{}
	}

	if b.protocol == models.ProtocolLegacy {
		return b.BuildEvent(models.EventNamespaceAlexa, models.EventNameResponse, map[string]interface{}{
			"properties": properties,
		})
	}

	event := b.BuildEvent(models.EventNamespaceAlexa, models.EventNameResponse, nil)
	event.Header.CorrelationToken = d.CorrelationToken
	event.Endpoint = &models.EventEndpoint{EndpointID: d.EndpointID}
	event.Context = &models.EventContext{Properties: properties}
	return event
}

// BuildDiscoveryResponse wraps the discovered endpoints; the list is never null
func (b *EventBuilder) BuildDiscoveryResponse(endpoints []models.DiscoveredEndpoint) *models.Event {
	if endpoints == nil {
		endpoints = []models.DiscoveredEndpoint{}
	}
	return b.BuildEvent(models.EventNamespaceDiscovery, models.EventNameDiscoverResponse, models.DiscoveryPayload{
		Endpoints: endpoints,
	})
}
