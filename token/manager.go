package token

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"
)

// tokenByteLength gives 256 bits of entropy per token.
const tokenByteLength = 32

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Manager handles token pair issuance, rotation and validation.
type Manager struct {
	repo     Repo
	lifetime time.Duration
}

// NewManager creates a token Manager. A non-positive lifetime falls back to
// DefaultLifetime.
func NewManager(repo Repo, lifetime time.Duration) *Manager {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &Manager{
		repo:     repo,
		lifetime: lifetime,
	}
}

// Issue mints a fresh pair for the client and resource identity. Any pairs
// previously held by the client are invalidated in the same store operation.
func (m *Manager) Issue(clientID, resourceUsername string) (*Pair, error) {
	accessToken, err := generateToken()
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Issue] generate access token")
	}
	refreshToken, err := generateToken()
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Issue] generate refresh token")
	}

	now := NowTimeFunc()
	pair := &Pair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		TokenType:        TokenType,
		ClientID:         clientID,
		ResourceUsername: resourceUsername,
		IssuedAt:         now,
		ExpiresAt:        now.Add(m.lifetime),
	}
	if err := m.repo.Replace(pair); err != nil {
		return nil, errors.Wrap(err, "[Manager.Issue] repo.Replace")
	}
	return pair, nil
}

// Validate looks up an access token and checks its expiry. A missing or
// expired token both report ErrInvalidToken.
func (m *Manager) Validate(accessToken string) (*Pair, error) {
	if accessToken == "" {
		return nil, ErrInvalidToken
	}
	pair, err := m.repo.GetByAccessToken(accessToken)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil, ErrInvalidToken
		}
		return nil, errors.Wrap(err, "[Manager.Validate] repo.GetByAccessToken")
	}
	if pair.Expired(NowTimeFunc()) {
		return nil, ErrInvalidToken
	}
	return pair, nil
}

func generateToken() (string, error) {
	bytes := make([]byte, tokenByteLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
