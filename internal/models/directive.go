package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Directive is an inbound request normalised from either protocol revision
type Directive struct {
	Protocol         ProtocolVersion
	Namespace        Namespace `validate:"nonblank"`
	Name             string    `validate:"nonblank"`
	MessageID        string
	CorrelationToken string
	EndpointID       string
	Token            string
	Payload          json.RawMessage
}

// Header is the header block shared by directives and events
type Header struct {
	Namespace        string `json:"namespace"`
	Name             string `json:"name"`
	PayloadVersion   string `json:"payloadVersion"`
	MessageID        string `json:"messageId,omitempty"`
	CorrelationToken string `json:"correlationToken,omitempty"`
}

type scope struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type directiveEndpoint struct {
	EndpointID string            `json:"endpointId"`
	Scope      *scope            `json:"scope,omitempty"`
	Cookie     map[string]string `json:"cookie,omitempty"`
}

type versionedDirective struct {
	Directive struct {
		Header   Header             `json:"header"`
		Endpoint *directiveEndpoint `json:"endpoint"`
		Payload  json.RawMessage    `json:"payload"`
	} `json:"directive"`
}

type legacyDirective struct {
	Header  Header          `json:"header"`
	Payload json.RawMessage `json:"payload"`
}

// payload fields carrying identity, present in one revision or the other
type identityPayload struct {
	AccessToken string `json:"accessToken"`
	Appliance   *struct {
		ApplianceID string `json:"applianceId"`
	} `json:"appliance"`
	Scope *scope `json:"scope"`
}

// ParseDirective decodes an inbound envelope of either shape.
// When the shape is recognised but the header is incomplete the returned
// Directive is non-nil with Protocol set, alongside ErrMalformedDirective.
func ParseDirective(raw []byte) (*Directive, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDirective, err)
	}

	switch {
	case keys["directive"] != nil:
		return parseVersioned(raw)
	case keys["header"] != nil:
		return parseLegacy(raw)
	default:
		return nil, fmt.Errorf("%w: neither directive nor header present", ErrMalformedDirective)
	}
}

func parseVersioned(raw []byte) (*Directive, error) {
	var env versionedDirective
	if err := json.Unmarshal(raw, &env); err != nil {
		return &Directive{Protocol: ProtocolVersioned}, fmt.Errorf("%w: %v", ErrMalformedDirective, err)
	}

	h := env.Directive.Header
	d := &Directive{
		Protocol:         ProtocolVersioned,
		Namespace:        NormalizeNamespace(h.Namespace),
		Name:             strings.TrimSpace(h.Name),
		MessageID:        h.MessageID,
		CorrelationToken: h.CorrelationToken,
		Payload:          normalizePayload(env.Directive.Payload),
	}
	if err := ValidateDirective(d); err != nil {
		return d, fmt.Errorf("%w: %v", ErrMalformedDirective, err)
	}

	if ep := env.Directive.Endpoint; ep != nil {
		d.EndpointID = ep.EndpointID
		if ep.Scope != nil {
			d.Token = ep.Scope.Token
		}
	}
	if d.Token == "" {
		var id identityPayload
		if err := json.Unmarshal(d.Payload, &id); err == nil && id.Scope != nil {
			d.Token = id.Scope.Token
		}
	}

	return d, nil
}

func parseLegacy(raw []byte) (*Directive, error) {
	var env legacyDirective
	if err := json.Unmarshal(raw, &env); err != nil {
		return &Directive{Protocol: ProtocolLegacy}, fmt.Errorf("%w: %v", ErrMalformedDirective, err)
	}

	h := env.Header
	d := &Directive{
		Protocol:         ProtocolLegacy,
		Namespace:        NormalizeNamespace(h.Namespace),
		Name:             strings.TrimSpace(h.Name),
		MessageID:        h.MessageID,
		CorrelationToken: h.CorrelationToken,
		Payload:          normalizePayload(env.Payload),
	}
	if err := ValidateDirective(d); err != nil {
		return d, fmt.Errorf("%w: %v", ErrMalformedDirective, err)
	}

	var id identityPayload
	if err := json.Unmarshal(d.Payload, &id); err == nil {
		d.Token = id.AccessToken
		if id.Appliance != nil {
			d.EndpointID = id.Appliance.ApplianceID
		}
	}

	return d, nil
}

// DecodePayload unmarshals the directive payload into v
func (d *Directive) DecodePayload(v interface{}) error {
	if err := json.Unmarshal(d.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s.%s payload: %w", d.Namespace, d.Name, err)
	}
	return nil
}

func normalizePayload(p json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(p)) == 0 || bytes.Equal(bytes.TrimSpace(p), []byte("null")) {
		return json.RawMessage("{}")
	}
	return p
}
