package services

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"smarthome-skill-bridge/internal/models"
)

func decode(t *testing.T, e *models.Event) map[string]interface{} {
	t.Helper()
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Failed to marshal event: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Failed to unmarshal event: %v", err)
	}
	return out
}

func TestBuildEvent(t *testing.T) {
	for _, protocol := range []models.ProtocolVersion{models.ProtocolLegacy, models.ProtocolVersioned} {
		t.Run("payloadVersion "+string(protocol), func(t *testing.T) {
			b := NewEventBuilder(protocol)

			seen := make(map[string]bool)
			for i := 0; i < 50; i++ {
				e := b.BuildEvent("Alexa", "Response", nil)
				if e.Header.MessageID == "" {
					t.Fatal("Expected a non-empty message id")
				}
				if seen[e.Header.MessageID] {
					t.Fatalf("Duplicate message id %s", e.Header.MessageID)
				}
				seen[e.Header.MessageID] = true

				if e.Header.PayloadVersion != string(protocol) {
					t.Errorf("Expected payloadVersion %s, got %s", protocol, e.Header.PayloadVersion)
				}
			}

			out := decode(t, b.BuildEvent("Alexa", "Response", nil))
			var payload interface{}
			if protocol == models.ProtocolLegacy {
				payload = out["payload"]
			} else {
				payload = out["event"].(map[string]interface{})["payload"]
			}
			if m, ok := payload.(map[string]interface{}); !ok || len(m) != 0 {
				t.Errorf("Expected empty object payload, got %v", payload)
			}
		})
	}
}

func TestBuildError(t *testing.T) {
	b := NewEventBuilder(models.ProtocolVersioned).WithIDGenerator(func() string { return "id-1" })

	e := b.BuildError(models.ErrorInvalidDirective, "nope")
	if !e.IsError() || e.ErrorType() != models.ErrorInvalidDirective {
		t.Fatalf("Expected INVALID_DIRECTIVE error event, got %+v", e)
	}

	out := decode(t, e)
	event := out["event"].(map[string]interface{})
	header := event["header"].(map[string]interface{})
	if header["namespace"] != "Alexa" || header["name"] != "ErrorResponse" {
		t.Errorf("Unexpected header %v", header)
	}
	if header["messageId"] != "id-1" {
		t.Errorf("Expected injected message id, got %v", header["messageId"])
	}
	payload := event["payload"].(map[string]interface{})
	if payload["type"] != "INVALID_DIRECTIVE" || payload["message"] != "nope" {
		t.Errorf("Unexpected payload %v", payload)
	}
}

func TestBuildResponse(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	d := &models.Directive{EndpointID: "e1", CorrelationToken: "corr"}
	props := []models.Property{models.NewProperty(models.NamespacePowerController, "powerState", "ON", now)}

	counter := 0
	gen := func() string {
		counter++
		return fmt.Sprintf("m%d", counter)
	}

	t.Run("versioned", func(t *testing.T) {
		b := NewEventBuilder(models.ProtocolVersioned).WithIDGenerator(gen)
		out := decode(t, b.BuildResponse(d, props))

		event := out["event"].(map[string]interface{})
		header := event["header"].(map[string]interface{})
		if header["correlationToken"] != "corr" {
			t.Errorf("Expected correlation token to be echoed, got %v", header["correlationToken"])
		}
		if event["endpoint"].(map[string]interface{})["endpointId"] != "e1" {
			t.Error("Expected endpoint to be echoed")
		}

		properties := out["context"].(map[string]interface{})["properties"].([]interface{})
		if len(properties) != 1 {
			t.Fatalf("Expected 1 property, got %d", len(properties))
		}
		p := properties[0].(map[string]interface{})
		if p["namespace"] != "Alexa.PowerController" || p["name"] != "powerState" || p["value"] != "ON" {
			t.Errorf("Unexpected property %v", p)
		}
		if p["timeOfSample"] != "2024-01-02T03:04:05Z" {
			t.Errorf("Unexpected timeOfSample %v", p["timeOfSample"])
		}
		if p["uncertaintyInMilliseconds"] != float64(0) {
			t.Errorf("Unexpected uncertainty %v", p["uncertaintyInMilliseconds"])
		}
	})

	t.Run("legacy", func(t *testing.T) {
		b := NewEventBuilder(models.ProtocolLegacy).WithIDGenerator(gen)
		out := decode(t, b.BuildResponse(d, props))

		if _, ok := out["event"]; ok {
			t.Error("Legacy events must not be wrapped")
		}
		if _, ok := out["context"]; ok {
			t.Error("Legacy events have no context")
		}
		payload := out["payload"].(map[string]interface{})
		if len(payload["properties"].([]interface{})) != 1 {
			t.Errorf("Expected properties in the legacy payload, got %v", payload)
		}
	})
}

func TestBuildDiscoveryResponse(t *testing.T) {
	b := NewEventBuilder(models.ProtocolVersioned)
	out := decode(t, b.BuildDiscoveryResponse(nil))

	event := out["event"].(map[string]interface{})
	header := event["header"].(map[string]interface{})
	if header["namespace"] != "Alexa.Discovery" || header["name"] != "Discover.Response" {
		t.Errorf("Unexpected header %v", header)
	}
	endpoints, ok := event["payload"].(map[string]interface{})["endpoints"].([]interface{})
	if !ok {
		t.Fatal("Expected endpoints to be an array, not null")
	}
	if len(endpoints) != 0 {
		t.Errorf("Expected no endpoints, got %d", len(endpoints))
	}
}
