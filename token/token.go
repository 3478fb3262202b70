package token

import (
	"errors"
	"time"
)

// DefaultLifetime is the access/refresh pair lifetime.
const DefaultLifetime = 24 * time.Hour

// TokenType is the only supported token type.
const TokenType = "bearer"

var ErrInvalidToken = errors.New("invalid token")

// Pair is an opaque access/refresh token pair bound to a client and a
// resource identity.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	TokenType        string
	ClientID         string
	ResourceUsername string
	IssuedAt         time.Time
	ExpiresAt        time.Time
}

// Expired reports whether the pair is past its expiry. Token age alone does
// not imply validity; callers compare against the wall clock at use time.
func (p *Pair) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
