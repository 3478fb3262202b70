// Package skill adapts voice-assistant smart-home directives to the
// device-command gate. Directive envelopes are modeled as tagged variants;
// the authorization core only ever sees normalized
// (device, command, value) triples.
package skill

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

var ErrUnsupportedDirective = errors.New("unsupported directive")

// Directive is one of the supported smart-home directive kinds.
type Directive interface {
	directive()
}

// Discover asks for the endpoint manifest of the token's resource identity.
type Discover struct {
	Token string
}

// ChangeChannel switches a device to a named channel.
type ChangeChannel struct {
	Token            string
	EndpointID       string
	CorrelationToken string
	Namespace        string
	ChannelName      string
}

// SkipChannels steps the channel up or down.
type SkipChannels struct {
	Token            string
	EndpointID       string
	CorrelationToken string
	Namespace        string
	Count            int64
}

// SetVolume sets an absolute volume level.
type SetVolume struct {
	Token            string
	EndpointID       string
	CorrelationToken string
	Namespace        string
	Volume           int64
}

// AdjustVolume changes the volume by a relative amount.
type AdjustVolume struct {
	Token            string
	EndpointID       string
	CorrelationToken string
	Namespace        string
	Delta            int64
}

func (*Discover) directive()      {}
func (*ChangeChannel) directive() {}
func (*SkipChannels) directive()  {}
func (*SetVolume) directive()     {}
func (*AdjustVolume) directive()  {}

// ParseDirective maps a raw directive envelope to its tagged variant.
func ParseDirective(raw []byte) (Directive, error) {
	name := gjson.GetBytes(raw, "directive.header.name").String()

	if name == "Discover" {
		return &Discover{
			Token: gjson.GetBytes(raw, "directive.payload.scope.token").String(),
		}, nil
	}

	token := gjson.GetBytes(raw, "directive.endpoint.scope.token").String()
	endpointID := gjson.GetBytes(raw, "directive.endpoint.endpointId").String()
	correlation := gjson.GetBytes(raw, "directive.header.correlationToken").String()
	namespace := gjson.GetBytes(raw, "directive.header.namespace").String()

	switch name {
	case "ChangeChannel":
		return &ChangeChannel{
			Token:            token,
			EndpointID:       endpointID,
			CorrelationToken: correlation,
			Namespace:        namespace,
			ChannelName:      gjson.GetBytes(raw, "directive.payload.channelMetadata.name").String(),
		}, nil
	case "SkipChannels":
		return &SkipChannels{
			Token:            token,
			EndpointID:       endpointID,
			CorrelationToken: correlation,
			Namespace:        namespace,
			Count:            gjson.GetBytes(raw, "directive.payload.channelCount").Int(),
		}, nil
	case "SetVolume":
		return &SetVolume{
			Token:            token,
			EndpointID:       endpointID,
			CorrelationToken: correlation,
			Namespace:        namespace,
			Volume:           gjson.GetBytes(raw, "directive.payload.volume").Int(),
		}, nil
	case "AdjustVolume":
		return &AdjustVolume{
			Token:            token,
			EndpointID:       endpointID,
			CorrelationToken: correlation,
			Namespace:        namespace,
			Delta:            gjson.GetBytes(raw, "directive.payload.volume").Int(),
		}, nil
	}

	return nil, ErrUnsupportedDirective
}

// channelCommand normalizes a channel name to its command string. Names
// like "BBC-One" keep only the part after the dash, matching the set-top
// box command vocabulary.
func channelCommand(channelName string) string {
	if idx := strings.Index(channelName, "-"); idx >= 0 {
		return channelName[idx+1:]
	}
	return channelName
}
