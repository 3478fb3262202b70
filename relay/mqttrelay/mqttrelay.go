// Package mqttrelay implements the device-command relay over MQTT.
package mqttrelay

import (
	"context"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
)

const (
	connectTimeout = 10 * time.Second
	disconnectWait = 250 // milliseconds
)

// Relay publishes command payloads to device bus addresses used as MQTT
// topics.
type Relay struct {
	client mqtt.Client
}

// New connects to the broker. The connection is kept open and reconnects
// automatically; Close releases it.
func New(brokerURL, clientID string) (*Relay, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)

	client := mqtt.NewClient(opts)
	if tok := client.Connect(); tok.Wait() && tok.Error() != nil {
		return nil, errors.Wrap(tok.Error(), "[mqttrelay.New] connect")
	}
	return &Relay{client: client}, nil
}

// Publish submits the payload to the address with the requested QoS and
// waits for the broker handshake or context cancellation, whichever comes
// first.
func (r *Relay) Publish(ctx context.Context, address, payload string, qos byte) error {
	tok := r.client.Publish(address, qos, false, payload)
	select {
	case <-tok.Done():
		if err := tok.Error(); err != nil {
			return errors.Wrap(err, "[Relay.Publish] publish")
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects from the broker.
func (r *Relay) Close() {
	r.client.Disconnect(disconnectWait)
}
