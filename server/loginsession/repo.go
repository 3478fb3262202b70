// Package loginsession tracks authenticated browser sessions between the
// login step and the consent decision. Sessions are keyed by an opaque
// identifier carried in a cookie; the pending authorization parameters are
// NOT stored here, they travel in query parameters.
package loginsession

import (
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// Session correlates a login event to a later consent decision.
type Session struct {
	Username  string
	CreatedAt time.Time
}

type Repo interface {
	Upsert(sessionID string, session Session) error
	Get(sessionID string) (Session, error)
	Delete(sessionID string) error
}
