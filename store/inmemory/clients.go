package inmemory

import "github.com/stbcloud/smarthome-auth/clients"

type clientRepo struct{ s *Store }

var _ clients.Repo = (*clientRepo)(nil)

func (r *clientRepo) Upsert(client *clients.ClientApp) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.clientsByID[client.ID] = *client
	r.s.clientIDsByName[client.DisplayName] = client.ID
	return nil
}

func (r *clientRepo) Get(clientID string) (*clients.ClientApp, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	client, ok := r.s.clientsByID[clientID]
	if !ok {
		return nil, clients.ErrClientNotFound
	}
	return &client, nil
}

func (r *clientRepo) GetByDisplayName(displayName string) (*clients.ClientApp, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.clientIDsByName[displayName]
	if !ok {
		return nil, clients.ErrClientNotFound
	}
	client := r.s.clientsByID[id]
	return &client, nil
}
