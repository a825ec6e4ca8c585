package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"smarthome-skill-bridge/internal/adapters/transport"
	"smarthome-skill-bridge/internal/models"

	"github.com/sirupsen/logrus"
)

// deviceService implements DeviceService over a transport client
type deviceService struct {
	client transport.Client
	logger *logrus.Logger
}

// NewDeviceService creates a new device service
func NewDeviceService(client transport.Client, logger *logrus.Logger) DeviceService {
	if logger == nil {
		logger = logrus.New()
	}
	return &deviceService{
		client: client,
		logger: logger,
	}
}

// ListDevices fetches the device descriptors visible to the access token
func (s *deviceService) ListDevices(ctx context.Context, protocol models.ProtocolVersion, token string) ([]models.BackendDevice, error) {
	path := fmt.Sprintf("/%s?access_token=%s", protocol.Collection(), url.QueryEscape(token))

	resp, err := s.client.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	list, err := unwrapList(resp.Body, protocol.Collection())
	if err != nil {
		return nil, fmt.Errorf("failed to parse device list: %w", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(list, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse device list: %w", err)
	}

	devices := make([]models.BackendDevice, 0, len(entries))
	for i, entry := range entries {
		device, err := decodeDevice(protocol, entry)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"index":  i,
				"reason": err.Error(),
			}).Debug("Skipping undecodable device descriptor")
			continue
		}
		devices = append(devices, device)
	}
	return devices, nil
}

// decodeDevice decodes one list entry in the shape used by the protocol
func decodeDevice(protocol models.ProtocolVersion, entry json.RawMessage) (models.BackendDevice, error) {
	if protocol == models.ProtocolLegacy {
		var legacy models.LegacyDevice
		if err := json.Unmarshal(entry, &legacy); err != nil {
			return models.BackendDevice{}, err
		}
		return legacy.ToBackendDevice(), nil
	}

	var device models.BackendDevice
	err := json.Unmarshal(entry, &device)
	return device, err
}

// SetPower switches an endpoint on or off
func (s *deviceService) SetPower(ctx context.Context, target Target, on bool) (*PowerState, error) {
	state := "off"
	if on {
		state = "on"
	}

	var body map[string]string
	if target.Protocol == models.ProtocolLegacy {
		body = map[string]string{"level": state}
	} else {
		body = map[string]string{"state": state}
	}

	resp, err := s.control(ctx, target, "power", body)
	if err != nil {
		return nil, err
	}

	reported := &PowerState{On: on}
	var st deviceStateBody
	if json.Unmarshal(resp.Body, &st) == nil {
		if v, ok := parseOnOff(st.powerLevel()); ok {
			reported.On = v
		}
	}
	return reported, nil
}

// ChangeChannel tunes an endpoint to a specific channel
func (s *deviceService) ChangeChannel(ctx context.Context, target Target, req *ChannelRequest) (*ChannelState, error) {
	resp, err := s.control(ctx, target, "channel", req)
	if err != nil {
		return nil, err
	}
	return decodeChannel(resp.Body, req.Channel), nil
}

// SkipChannels moves an endpoint count channels up or down
func (s *deviceService) SkipChannels(ctx context.Context, target Target, count int) (*ChannelState, error) {
	resp, err := s.control(ctx, target, "channel", map[string]int{"channelCount": count})
	if err != nil {
		return nil, err
	}
	return decodeChannel(resp.Body, Channel{}), nil
}

// SelectInput switches the active input of an endpoint
func (s *deviceService) SelectInput(ctx context.Context, target Target, input string) (*InputState, error) {
	resp, err := s.control(ctx, target, "input", map[string]string{"input": input})
	if err != nil {
		return nil, err
	}

	reported := &InputState{Input: input}
	var st deviceStateBody
	if json.Unmarshal(resp.Body, &st) == nil && st.Input != "" {
		reported.Input = st.Input
	}
	return reported, nil
}

// SetMute mutes or unmutes an endpoint
func (s *deviceService) SetMute(ctx context.Context, target Target, mute bool) error {
	_, err := s.control(ctx, target, "volume", map[string]bool{"mute": mute})
	return err
}

// AdjustVolume changes the volume by a number of steps
func (s *deviceService) AdjustVolume(ctx context.Context, target Target, steps int) error {
	_, err := s.control(ctx, target, "volume", map[string]int{"volumeSteps": steps})
	return err
}

// Playback sends a transport control action such as Play or Stop
func (s *deviceService) Playback(ctx context.Context, target Target, action string) error {
	_, err := s.control(ctx, target, "playback", map[string]string{"action": action})
	return err
}

func (s *deviceService) control(ctx context.Context, target Target, resource string, body interface{}) (*transport.Response, error) {
	path := fmt.Sprintf("/%s/%s/%s?access_token=%s",
		target.Protocol.Collection(),
		url.PathEscape(target.EndpointID),
		resource,
		url.QueryEscape(target.Token),
	)

	s.logger.WithFields(logrus.Fields{
		"endpoint_id": target.EndpointID,
		"resource":    resource,
	}).Debug("Sending control request")

	resp, err := s.client.Do(ctx, target.Protocol.ControlMethod(), path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s of %s: %w", resource, target.EndpointID, err)
	}
	return resp, nil
}

// deviceStateBody accepts the state shapes backends have returned
type deviceStateBody struct {
	State   string   `json:"state"`
	Level   string   `json:"level"`
	Input   string   `json:"input"`
	Channel *Channel `json:"channel"`
	Metrics *struct {
		Level string `json:"level"`
	} `json:"metrics"`
}

func (b deviceStateBody) powerLevel() string {
	switch {
	case b.State != "":
		return b.State
	case b.Level != "":
		return b.Level
	case b.Metrics != nil:
		return b.Metrics.Level
	}
	return ""
}

func parseOnOff(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1":
		return true, true
	case "off", "false", "0":
		return false, true
	}
	return false, false
}

func decodeChannel(body []byte, requested Channel) *ChannelState {
	var st deviceStateBody
	if json.Unmarshal(body, &st) == nil && st.Channel != nil && !st.Channel.IsEmpty() {
		return &ChannelState{Channel: *st.Channel}
	}
	return &ChannelState{Channel: requested}
}

// unwrapList returns the JSON array of a list response, which is either a
// bare array or an object keyed by the collection name
func unwrapList(body []byte, collection string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		return json.RawMessage(trimmed), nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	if list, ok := wrapped[collection]; ok {
		return list, nil
	}
	return nil, fmt.Errorf("response has no %q list", collection)
}
