package token

// Repo stores token pairs keyed by their opaque token values.
//
// Replace must atomically delete every pair held by pair.ClientID before
// inserting the new one, so at most one live pair exists per client at any
// point, even under concurrent exchanges. The deletion is keyed by client
// only: a second resource identity authorizing the same client evicts the
// first identity's session. That matches the source system's behavior and
// is preserved as-is.
type Repo interface {
	Replace(pair *Pair) error
	GetByAccessToken(accessToken string) (*Pair, error)
	GetByRefreshToken(refreshToken string) (*Pair, error)
}
