package skill

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stbcloud/smarthome-auth/gate"
	"github.com/stbcloud/smarthome-auth/resources"
	"github.com/stbcloud/smarthome-auth/token"
)

const payloadVersion = "3"

// Dispatcher maps parsed directives to gate calls and builds the response
// envelopes the voice platform expects.
type Dispatcher struct {
	tokens       *token.Manager
	resourceRepo resources.Repo
	gate         *gate.Gate
}

func NewDispatcher(tokens *token.Manager, resourceRepo resources.Repo, g *gate.Gate) (*Dispatcher, error) {
	if tokens == nil {
		return nil, errors.New("[skill.NewDispatcher] token manager is required")
	}
	if resourceRepo == nil {
		return nil, errors.New("[skill.NewDispatcher] resource repo is required")
	}
	if g == nil {
		return nil, errors.New("[skill.NewDispatcher] gate is required")
	}
	return &Dispatcher{
		tokens:       tokens,
		resourceRepo: resourceRepo,
		gate:         g,
	}, nil
}

// Handle parses and executes one directive envelope. Invalid tokens yield a
// state payload rather than an error; only malformed or unsupported
// envelopes fail.
func (d *Dispatcher) Handle(ctx context.Context, raw []byte) (map[string]any, error) {
	directive, err := ParseDirective(raw)
	if err != nil {
		return nil, err
	}

	switch v := directive.(type) {
	case *Discover:
		return d.discover(v)
	case *ChangeChannel:
		return d.control(ctx, v.Token, v.EndpointID, "channel_switch"+channelCommand(v.ChannelName), "",
			v.Namespace, "channel", v.CorrelationToken)
	case *SkipChannels:
		command := "channel_up"
		if v.Count < 0 {
			command = "channel_down"
		}
		return d.control(ctx, v.Token, v.EndpointID, command, "",
			v.Namespace, "channel", v.CorrelationToken)
	case *SetVolume:
		return d.control(ctx, v.Token, v.EndpointID, "volume_switch", strconv.FormatInt(v.Volume, 10),
			v.Namespace, "volume", v.CorrelationToken)
	case *AdjustVolume:
		return d.control(ctx, v.Token, v.EndpointID, "volume_up/down", strconv.FormatInt(v.Delta, 10),
			v.Namespace, "volume", v.CorrelationToken)
	}
	return nil, ErrUnsupportedDirective
}

func (d *Dispatcher) discover(directive *Discover) (map[string]any, error) {
	pair, err := d.tokens.Validate(directive.Token)
	if err != nil {
		if errors.Is(err, token.ErrInvalidToken) {
			return invalidTokenResponse(), nil
		}
		return nil, errors.Wrap(err, "[Dispatcher.discover] token validation")
	}

	res, err := d.resourceRepo.Get(pair.ResourceUsername)
	if err != nil {
		return nil, errors.Wrap(err, "[Dispatcher.discover] resources.Get")
	}

	return map[string]any{
		"event": map[string]any{
			"header": map[string]any{
				"namespace":      "Alexa.Discovery",
				"name":           "AddOrUpdateReport",
				"payloadVersion": payloadVersion,
				"messageId":      uuid.New().String(),
			},
			"payload": map[string]any{
				"endpoints": endpointManifest(res),
			},
		},
	}, nil
}

func (d *Dispatcher) control(ctx context.Context, accessToken, endpointID, command, value, namespace, propertyName, correlationToken string) (map[string]any, error) {
	err := d.gate.AuthorizeAndDispatch(ctx, accessToken, endpointID, command, value)
	if err != nil {
		if errors.Is(err, token.ErrInvalidToken) {
			return invalidTokenResponse(), nil
		}
		return nil, err
	}
	return controlResponse(namespace, propertyName, correlationToken, endpointID), nil
}

func endpointManifest(res *resources.Resource) []map[string]any {
	endpoints := make([]map[string]any, 0, len(res.DeviceIDs))
	for _, deviceID := range res.DeviceIDs {
		endpoints = append(endpoints, map[string]any{
			"endpointId":        deviceID,
			"friendlyName":      "Device " + deviceID,
			"description":       "Set-top box",
			"manufacturerName":  "stbcloud",
			"displayCategories": []string{"TV"},
			"cookie":            map[string]any{},
			"capabilities": []map[string]any{
				speakerCapability(),
				channelCapability(),
				alexaCapability(),
			},
		})
	}
	return endpoints
}

func speakerCapability() map[string]any {
	return map[string]any{
		"type":      "AlexaInterface",
		"interface": "Alexa.Speaker",
		"version":   payloadVersion,
		"properties": map[string]any{
			"supported": []map[string]any{{"name": "volume"}},
		},
	}
}

func channelCapability() map[string]any {
	return map[string]any{
		"type":      "AlexaInterface",
		"interface": "Alexa.ChannelController",
		"version":   payloadVersion,
		"properties": map[string]any{
			"supported": []map[string]any{{"name": "channel"}},
		},
	}
}

func alexaCapability() map[string]any {
	return map[string]any{
		"type":      "AlexaInterface",
		"interface": "Alexa",
		"version":   payloadVersion,
	}
}

func controlResponse(namespace, propertyName, correlationToken, endpointID string) map[string]any {
	return map[string]any{
		"context": map[string]any{
			"properties": []map[string]any{
				{
					"namespace": namespace,
					"name":      propertyName,
					"value":     map[string]any{},
				},
			},
		},
		"event": map[string]any{
			"header": map[string]any{
				"messageId":        uuid.New().String(),
				"correlationToken": correlationToken,
				"namespace":        "Alexa",
				"name":             "Response",
				"payloadVersion":   payloadVersion,
			},
			"endpoint": map[string]any{
				"endpointId": endpointID,
			},
		},
		"payload": map[string]any{},
	}
}

func invalidTokenResponse() map[string]any {
	return map[string]any{
		"state": "the user access token is invalid",
	}
}
