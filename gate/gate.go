// Package gate validates bearer tokens on inbound device commands and
// forwards authorized directives to the device-command relay.
package gate

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/stbcloud/smarthome-auth/relay"
	"github.com/stbcloud/smarthome-auth/resources"
	"github.com/stbcloud/smarthome-auth/token"
)

// ErrUnknownResource is returned when a valid token points at a resource
// identity that no longer resolves. Referential integrity should prevent
// this; it is handled defensively rather than assumed away.
var ErrUnknownResource = errors.New("unknown resource")

// Gate reads token pairs and resource identities; it never mutates them.
type Gate struct {
	tokens       *token.Manager
	resourceRepo resources.Repo
	publisher    relay.Publisher
}

func New(tokens *token.Manager, resourceRepo resources.Repo, publisher relay.Publisher) (*Gate, error) {
	if tokens == nil {
		return nil, errors.New("[gate.New] token manager is required")
	}
	if resourceRepo == nil {
		return nil, errors.New("[gate.New] resource repo is required")
	}
	if publisher == nil {
		return nil, errors.New("[gate.New] relay publisher is required")
	}
	return &Gate{
		tokens:       tokens,
		resourceRepo: resourceRepo,
		publisher:    publisher,
	}, nil
}

// AuthorizeAndDispatch validates the access token, resolves the device to
// its bus address and submits the command for at-least-once delivery. A nil
// return is the acknowledgement: the relay boundary is fire-and-forget and
// a failed publish does not fail the request.
func (g *Gate) AuthorizeAndDispatch(ctx context.Context, accessToken, deviceID, command, value string) error {
	pair, err := g.tokens.Validate(accessToken)
	if err != nil {
		if errors.Is(err, token.ErrInvalidToken) {
			return token.ErrInvalidToken
		}
		return errors.Wrap(err, "[AuthorizeAndDispatch] token validation")
	}

	res, err := g.resourceRepo.Get(pair.ResourceUsername)
	if err != nil {
		if errors.Is(err, resources.ErrResourceNotFound) {
			return ErrUnknownResource
		}
		return errors.Wrap(err, "[AuthorizeAndDispatch] resources.Get")
	}

	address, err := res.AddressFor(deviceID)
	if err != nil {
		log.Warn().
			Str("username", res.Username).
			Str("device_id", deviceID).
			Msg("command for a device the resource does not own")
		return resources.ErrNoSuchDevice
	}

	payload := command
	if value != "" {
		payload += value
	}

	if err := g.publisher.Publish(ctx, address, payload, relay.QoSAtLeastOnce); err != nil {
		// Delivery assurance is the relay's contract; the submission error
		// is recorded but not surfaced to the caller.
		log.Error().
			Err(err).
			Str("address", address).
			Str("payload", payload).
			Msg("relay publish failed")
	}
	return nil
}
