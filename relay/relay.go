// Package relay defines the boundary to the external device-command relay.
package relay

import "context"

// QoS tiers mirroring the MQTT delivery levels.
const (
	QoSFireAndForget byte = 0
	QoSAtLeastOnce   byte = 1
)

// Publisher performs best-effort out-of-band delivery of a command payload
// to a device bus address. Delivery assurance is the relay's contract, not
// the caller's; no return value beyond the submission error is consumed.
type Publisher interface {
	Publish(ctx context.Context, address, payload string, qos byte) error
}
