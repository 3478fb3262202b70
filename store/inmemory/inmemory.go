// Package inmemory provides map-backed implementations of the client,
// resource, grant and token repositories. A single lock covers every
// repository so code consumption and token rotation are atomic.
package inmemory

import (
	"sync"

	"github.com/stbcloud/smarthome-auth/clients"
	"github.com/stbcloud/smarthome-auth/grants"
	"github.com/stbcloud/smarthome-auth/resources"
	"github.com/stbcloud/smarthome-auth/token"
)

// Store holds all repositories in process memory.
type Store struct {
	mu              sync.RWMutex
	clientsByID     map[string]clients.ClientApp
	clientIDsByName map[string]string
	resourcesByName map[string]resources.Resource
	grantsByCode    map[string]grants.Grant
	pairsByAccess   map[string]token.Pair
	accessByRefresh map[string]string
}

func New() *Store {
	return &Store{
		clientsByID:     make(map[string]clients.ClientApp),
		clientIDsByName: make(map[string]string),
		resourcesByName: make(map[string]resources.Resource),
		grantsByCode:    make(map[string]grants.Grant),
		pairsByAccess:   make(map[string]token.Pair),
		accessByRefresh: make(map[string]string),
	}
}

// Clients returns the client application repository.
func (s *Store) Clients() clients.Repo { return &clientRepo{s} }

// Resources returns the resource identity repository.
func (s *Store) Resources() resources.Repo { return &resourceRepo{s} }

// Grants returns the authorization grant repository.
func (s *Store) Grants() grants.Repo { return &grantRepo{s} }

// Tokens returns the token pair repository.
func (s *Store) Tokens() token.Repo { return &tokenRepo{s} }
