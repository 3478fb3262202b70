package inmemory

import "github.com/stbcloud/smarthome-auth/token"

type tokenRepo struct{ s *Store }

var _ token.Repo = (*tokenRepo)(nil)

// Replace deletes every pair held by pair.ClientID and inserts the new one
// under a single lock acquisition, keeping at most one live pair per client
// even when exchanges race.
func (r *tokenRepo) Replace(pair *token.Pair) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for access, existing := range r.s.pairsByAccess {
		if existing.ClientID == pair.ClientID {
			delete(r.s.pairsByAccess, access)
			delete(r.s.accessByRefresh, existing.RefreshToken)
		}
	}

	r.s.pairsByAccess[pair.AccessToken] = *pair
	r.s.accessByRefresh[pair.RefreshToken] = pair.AccessToken
	return nil
}

func (r *tokenRepo) GetByAccessToken(accessToken string) (*token.Pair, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	pair, ok := r.s.pairsByAccess[accessToken]
	if !ok {
		return nil, token.ErrInvalidToken
	}
	return &pair, nil
}

func (r *tokenRepo) GetByRefreshToken(refreshToken string) (*token.Pair, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	access, ok := r.s.accessByRefresh[refreshToken]
	if !ok {
		return nil, token.ErrInvalidToken
	}
	pair := r.s.pairsByAccess[access]
	return &pair, nil
}
