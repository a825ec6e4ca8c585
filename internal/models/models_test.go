package models

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

// TestCapabilitiesFor checks the fixed device type to capability table
func TestCapabilitiesFor(t *testing.T) {
	tests := []struct {
		deviceType DeviceType
		want       []Capability
	}{
		{DeviceTypeSwitchBinary, []Capability{CapabilityPower}},
		{DeviceTypeTelevision, []Capability{CapabilityPower, CapabilityChannel, CapabilityPlayback, CapabilitySpeaker, CapabilityInput}},
		{DeviceTypeRoku, []Capability{CapabilityChannel, CapabilityPlayback}},
		{"fridge", []Capability{}},
		{"", []Capability{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.deviceType), func(t *testing.T) {
			got := CapabilitiesFor(tt.deviceType)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}

	// callers must not be able to change the table
	caps := CapabilitiesFor(DeviceTypeSwitchBinary)
	caps[0] = CapabilityInput
	if CapabilitiesFor(DeviceTypeSwitchBinary)[0] != CapabilityPower {
		t.Error("CapabilitiesFor returned the shared slice")
	}
}

func TestCapabilityDescribe(t *testing.T) {
	power := CapabilityPower.Describe()
	if power.Type != "AlexaInterface" || power.Interface != "Alexa.PowerController" || power.Version != "3" {
		t.Errorf("Unexpected capability %+v", power)
	}
	if power.Properties == nil || len(power.Properties.Supported) != 1 || power.Properties.Supported[0].Name != "powerState" {
		t.Errorf("Expected powerState to be supported, got %+v", power.Properties)
	}

	if speaker := CapabilitySpeaker.Describe(); speaker.Properties != nil {
		t.Errorf("StepSpeaker reports no properties, got %+v", speaker.Properties)
	}
}

func TestNormalizeNamespace(t *testing.T) {
	tests := map[string]Namespace{
		"Alexa.PowerController":               NamespacePowerController,
		"Alexa.ConnectedHome.PowerController": NamespacePowerController,
		"Alexa.Discovery":                     NamespaceDiscovery,
		"Alexa.ConnectedHome.Discovery":       NamespaceDiscovery,
		" StepSpeaker ":                       NamespaceStepSpeaker,
		"Alexa":                               "Alexa",
	}

	for in, want := range tests {
		if got := NormalizeNamespace(in); got != want {
			t.Errorf("NormalizeNamespace(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestParseDirective_Versioned(t *testing.T) {
	raw := []byte(`{"directive":{
		"header":{"namespace":"Alexa.PowerController","name":"TurnOn","payloadVersion":"3","messageId":"m1","correlationToken":"c1"},
		"endpoint":{"endpointId":"e1","scope":{"type":"BearerToken","token":"tok"}},
		"payload":{}
	}}`)

	d, err := ParseDirective(raw)
	if err != nil {
		t.Fatalf("ParseDirective failed: %v", err)
	}

	want := Directive{
		Protocol:         ProtocolVersioned,
		Namespace:        NamespacePowerController,
		Name:             "TurnOn",
		MessageID:        "m1",
		CorrelationToken: "c1",
		EndpointID:       "e1",
		Token:            "tok",
		Payload:          json.RawMessage(`{}`),
	}
	if !reflect.DeepEqual(*d, want) {
		t.Errorf("Expected %+v, got %+v", want, *d)
	}
}

func TestParseDirective_DiscoveryScopeInPayload(t *testing.T) {
	raw := []byte(`{"directive":{"header":{"namespace":"Alexa.Discovery","name":"Discover","payloadVersion":"3"},"payload":{"scope":{"type":"BearerToken","token":"tok"}}}}`)

	d, err := ParseDirective(raw)
	if err != nil {
		t.Fatalf("ParseDirective failed: %v", err)
	}
	if d.Token != "tok" {
		t.Errorf("Expected token from payload scope, got %q", d.Token)
	}
	if d.EndpointID != "" {
		t.Errorf("Expected no endpoint, got %q", d.EndpointID)
	}
}

func TestParseDirective_Legacy(t *testing.T) {
	raw := []byte(`{"header":{"namespace":"Alexa.ConnectedHome.PowerController","name":"TurnOff","payloadVersion":"2","messageId":"m2"},
		"payload":{"accessToken":"tok","appliance":{"applianceId":"d1"}}}`)

	d, err := ParseDirective(raw)
	if err != nil {
		t.Fatalf("ParseDirective failed: %v", err)
	}
	if d.Protocol != ProtocolLegacy {
		t.Errorf("Expected legacy protocol, got %s", d.Protocol)
	}
	if d.Namespace != NamespacePowerController || d.Name != "TurnOff" {
		t.Errorf("Unexpected routing key %s.%s", d.Namespace, d.Name)
	}
	if d.Token != "tok" || d.EndpointID != "d1" {
		t.Errorf("Unexpected identity token=%q endpoint=%q", d.Token, d.EndpointID)
	}
}

func TestParseDirective_Malformed(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantProtocol ProtocolVersion
	}{
		{"invalid json", `{`, ""},
		{"string", `"hello"`, ""},
		{"no header", `{"payload":{}}`, ""},
		{"versioned missing name", `{"directive":{"header":{"namespace":"Alexa.PowerController"}}}`, ProtocolVersioned},
		{"versioned header wrong type", `{"directive":{"header":"x"}}`, ProtocolVersioned},
		{"legacy missing namespace", `{"header":{"name":"TurnOn"}}`, ProtocolLegacy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDirective([]byte(tt.raw))
			if !errors.Is(err, ErrMalformedDirective) {
				t.Fatalf("Expected ErrMalformedDirective, got %v", err)
			}
			var got ProtocolVersion
			if d != nil {
				got = d.Protocol
			}
			if got != tt.wantProtocol {
				t.Errorf("Expected detected protocol %q, got %q", tt.wantProtocol, got)
			}
		})
	}
}

func TestParseDirective_NullPayload(t *testing.T) {
	d, err := ParseDirective([]byte(`{"directive":{"header":{"namespace":"Alexa.StepSpeaker","name":"SetMute"},"payload":null}}`))
	if err != nil {
		t.Fatalf("ParseDirective failed: %v", err)
	}

	var p struct {
		Mute *bool `json:"mute"`
	}
	if err := d.DecodePayload(&p); err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	if p.Mute != nil {
		t.Errorf("Expected no mute value, got %v", *p.Mute)
	}
}

func TestEventMarshal(t *testing.T) {
	sample := time.Date(2024, 5, 6, 7, 8, 9, 0, time.FixedZone("X", 3600))
	prop := NewProperty(NamespacePowerController, "powerState", "ON", sample)
	if prop.TimeOfSample != "2024-05-06T06:08:09Z" {
		t.Errorf("Expected UTC sample time, got %s", prop.TimeOfSample)
	}

	t.Run("versioned", func(t *testing.T) {
		e := Event{
			Header:   Header{Namespace: "Alexa", Name: "Response", PayloadVersion: "3", MessageID: "m"},
			Endpoint: &EventEndpoint{EndpointID: "e1"},
			Context:  &EventContext{Properties: []Property{prop}},
		}
		data, err := json.Marshal(&e)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		want := `{"event":{"header":{"namespace":"Alexa","name":"Response","payloadVersion":"3","messageId":"m"},"endpoint":{"endpointId":"e1"},"payload":{}},` +
			`"context":{"properties":[{"namespace":"Alexa.PowerController","name":"powerState","value":"ON","timeOfSample":"2024-05-06T06:08:09Z","uncertaintyInMilliseconds":0}]}}`
		if string(data) != want {
			t.Errorf("Expected %s, got %s", want, data)
		}
	})

	t.Run("legacy", func(t *testing.T) {
		e := Event{
			Header:  Header{Namespace: "Alexa", Name: "ErrorResponse", PayloadVersion: "2", MessageID: "m"},
			Payload: ErrorPayload{Type: ErrorInvalidDirective, Message: "no"},
		}
		data, err := json.Marshal(e)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		want := `{"header":{"namespace":"Alexa","name":"ErrorResponse","payloadVersion":"2","messageId":"m"},"payload":{"type":"INVALID_DIRECTIVE","message":"no"}}`
		if string(data) != want {
			t.Errorf("Expected %s, got %s", want, data)
		}
		if e.ErrorType() != ErrorInvalidDirective {
			t.Errorf("Expected INVALID_DIRECTIVE, got %q", e.ErrorType())
		}
	})
}

func TestValidateDevice(t *testing.T) {
	tests := []struct {
		name      string
		device    BackendDevice
		wantField string
	}{
		{"valid", BackendDevice{ID: "d1", Name: "Lamp", Type: DeviceTypeSwitchBinary}, ""},
		{"missing id", BackendDevice{Name: "Lamp", Type: DeviceTypeSwitchBinary}, "ID"},
		{"blank name", BackendDevice{ID: "d1", Name: "  ", Type: DeviceTypeRoku}, "Name"},
		{"unknown type", BackendDevice{ID: "d1", Name: "Fridge", Type: "fridge"}, "Type"},
		{"missing type", BackendDevice{ID: "d1", Name: "Thing"}, "Type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDevice(&tt.device)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Expected valid device, got %v", err)
				}
				return
			}

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Expected field %s, got %s", tt.wantField, ve.Field)
			}
		})
	}
}

func TestLegacyDeviceConversion(t *testing.T) {
	d := LegacyDevice{ID: "d1", Metrics: LegacyMetrics{Title: "Lamp", Level: "on"}}.ToBackendDevice()
	if d.Type != DeviceTypeSwitchBinary || d.Name != "Lamp" {
		t.Errorf("Unexpected conversion %+v", d)
	}

	tv := LegacyDevice{ID: "d2", DeviceType: DeviceTypeTelevision, Metrics: LegacyMetrics{Title: "TV"}}.ToBackendDevice()
	if tv.Type != DeviceTypeTelevision {
		t.Errorf("Expected declared type to be kept, got %s", tv.Type)
	}
}

func TestAsDirectiveError(t *testing.T) {
	de := NewDirectiveError(ErrorValueOutOfRange, "steps %d", 200)
	wrapped := errors.Join(errors.New("context"), de)

	if got := AsDirectiveError(wrapped); got.Type != ErrorValueOutOfRange || got.Message != "steps 200" {
		t.Errorf("Expected wrapped directive error, got %+v", got)
	}
	if got := AsDirectiveError(errors.New("boom")); got.Type != ErrorInternal || got.Message != "boom" {
		t.Errorf("Expected INTERNAL_ERROR fallback, got %+v", got)
	}
}
