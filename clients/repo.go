package clients

import "errors"

var ErrClientNotFound = errors.New("client not found")

type Repo interface {
	Upsert(client *ClientApp) error
	Get(clientID string) (*ClientApp, error)
	GetByDisplayName(displayName string) (*ClientApp, error)
}
