package server

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"smarthome-skill-bridge/internal/adapters/transport"
	"smarthome-skill-bridge/internal/config"
	"smarthome-skill-bridge/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Port:        "8081",
		Protocol:    models.ProtocolVersioned,
		Remote:      config.RemoteConfig{Scheme: "http", Host: "localhost", Port: 8080},
		RateLimit:   config.RateLimitConfig{PerSecond: 5, Burst: 1},
	}
}

// TestNewContainer verifies that the container can be created successfully
func TestNewContainer(t *testing.T) {
	container, err := NewContainer(testConfig())
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}

	if container.Logger == nil || container.Transport == nil || container.Devices == nil || container.Router == nil {
		t.Errorf("Container has unset dependencies: %+v", container)
	}
	if container.Handler() == nil {
		t.Error("Handler is nil")
	}

	if err := container.Close(); err != nil {
		t.Errorf("Failed to close container: %v", err)
	}
}

func TestNewContainer_RequiresConfig(t *testing.T) {
	if _, err := NewContainer(nil); err == nil {
		t.Error("Expected error for nil config")
	}
	if _, err := NewContainerWithClient(testConfig(), nil, nil); err == nil {
		t.Error("Expected error for nil client")
	}
}

func TestContainer_Handle(t *testing.T) {
	logger, hook := test.NewNullLogger()
	mock := transport.NewMockClient().RespondRaw([]byte(`[{"id":"d1","name":"Lamp","type":"switchBinary"}]`))

	container, err := NewContainerWithClient(testConfig(), mock, logger)
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}

	raw := json.RawMessage(`{"directive":{"header":{"namespace":"Alexa.Discovery","name":"Discover","payloadVersion":"3","messageId":"m"},"payload":{"scope":{"type":"BearerToken","token":"tok"}}}}`)
	event, err := container.Handle(context.Background(), raw)
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	payload, ok := event.Payload.(models.DiscoveryPayload)
	if !ok || len(payload.Endpoints) != 1 {
		t.Fatalf("Expected one discovered endpoint, got %+v", event.Payload)
	}
	if calls := mock.Calls(); len(calls) != 1 || calls[0].Path != "/endpoints?access_token=tok" {
		t.Errorf("Unexpected backend calls %+v", calls)
	}

	if entry := hook.LastEntry(); entry == nil || entry.Data["name"] != "Discover" {
		t.Errorf("Expected invocation log line, got %v", entry)
	}
}

func TestContainer_HandleMalformed(t *testing.T) {
	container, err := NewContainerWithClient(testConfig(), transport.NewMockClient(), nil)
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}

	for _, raw := range []string{``, `null`, `{"foo":1}`} {
		event, err := container.Handle(context.Background(), json.RawMessage(raw))
		if err != nil {
			t.Fatalf("Handle(%q) returned error: %v", raw, err)
		}
		if event.ErrorType() != models.ErrorInternal {
			t.Errorf("Handle(%q): expected INTERNAL_ERROR, got %q", raw, event.ErrorType())
		}
	}
}

func TestConnectionManager(t *testing.T) {
	loads := 0
	cm := NewConnectionManager(func() (*config.Config, error) {
		loads++
		return testConfig(), nil
	})

	if cm.IsHealthy() {
		t.Error("Expected manager to be unhealthy before first use")
	}

	first, err := cm.GetContainer(context.Background())
	if err != nil {
		t.Fatalf("GetContainer failed: %v", err)
	}
	second, err := cm.GetContainer(context.Background())
	if err != nil {
		t.Fatalf("GetContainer failed: %v", err)
	}
	if first != second {
		t.Error("Expected the container to be reused")
	}
	if loads != 1 {
		t.Errorf("Expected configuration to be loaded once, got %d", loads)
	}
	if !cm.IsHealthy() || cm.LastUsed().IsZero() {
		t.Error("Expected manager to be healthy")
	}

	if err := cm.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if cm.IsHealthy() {
		t.Error("Expected manager to be unhealthy after cleanup")
	}
}

func TestConnectionManager_Errors(t *testing.T) {
	cm := NewConnectionManager(func() (*config.Config, error) {
		return nil, errors.New("REMOTE_HOST is required")
	})
	if _, err := cm.GetContainer(context.Background()); err == nil {
		t.Error("Expected configuration error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewConnectionManager(nil).GetContainer(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestConnectionManager_HandleWithoutContainer(t *testing.T) {
	cm := NewConnectionManager(func() (*config.Config, error) {
		return nil, errors.New("REMOTE_HOST is required")
	})
	logger, hook := test.NewNullLogger()
	cm.logger = logger

	tests := []struct {
		name string
		raw  string
		want models.ProtocolVersion
	}{
		{"versioned", `{"directive":{"header":{"namespace":"Alexa.PowerController","name":"TurnOn","payloadVersion":"3","messageId":"m"},"payload":{}}}`, models.ProtocolVersioned},
		{"legacy", `{"header":{"namespace":"Alexa.ConnectedHome.PowerController","name":"TurnOn","payloadVersion":"2","messageId":"m"},"payload":{}}`, models.ProtocolLegacy},
		{"malformed", `{}`, models.ProtocolVersioned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := cm.Handle(context.Background(), json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("Expected no error to escape, got %v", err)
			}
			if event.ErrorType() != models.ErrorInternal {
				t.Errorf("Expected INTERNAL_ERROR, got %q", event.ErrorType())
			}
			if event.Protocol() != tt.want {
				t.Errorf("Expected payloadVersion %s, got %s", tt.want, event.Header.PayloadVersion)
			}
		})
	}

	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.ErrorLevel {
		t.Errorf("Expected the container failure to be logged, got %v", entry)
	}
}
