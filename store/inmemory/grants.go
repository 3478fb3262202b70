package inmemory

import "github.com/stbcloud/smarthome-auth/grants"

type grantRepo struct{ s *Store }

var _ grants.Repo = (*grantRepo)(nil)

func (r *grantRepo) Upsert(grant *grants.Grant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.grantsByCode[grant.Code] = *grant
	return nil
}

// Consume removes and returns the grant under the store lock, so of any
// number of concurrent calls for the same code exactly one succeeds.
func (r *grantRepo) Consume(clientID, code string) (*grants.Grant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	grant, ok := r.s.grantsByCode[code]
	if !ok || grant.ClientID != clientID {
		return nil, grants.ErrInvalidGrant
	}
	delete(r.s.grantsByCode, code)
	return &grant, nil
}
