package grants

import (
	"errors"
	"time"
)

// DefaultLifetime is how long an authorization code stays exchangeable.
const DefaultLifetime = 600 * time.Second

var ErrInvalidGrant = errors.New("invalid grant")

// Grant is a short-lived authorization code linking a client, a resource
// identity and a redirect target. Consumed exactly once by code exchange.
type Grant struct {
	Code             string
	ClientID         string
	ResourceUsername string
	RedirectURI      string
	Scope            string
	IssuedAt         time.Time
	ExpiresAt        time.Time
}

// Expired reports whether the code can no longer be exchanged. Expiry is a
// wall-clock comparison at use time, not sweep-driven.
func (g *Grant) Expired(now time.Time) bool {
	return now.After(g.ExpiresAt)
}
